package endpoint

import (
	"net/http"
	"testing"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func createPlan(t *testing.T, r *gin.Engine, token string, clientID uint, title string) model.DietPlan {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/diet-plans", token, map[string]interface{}{
		"title":     title,
		"startDate": "2026-09-01",
		"endDate":   "2026-09-30",
		"breakfast": "Yulaf ezmesi",
		"lunch":     "Izgara tavuk salata",
		"clientId":  clientID,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var plan model.DietPlan
	decodeData(t, w, &plan)
	return plan
}

func TestCreateDietPlan(t *testing.T) {
	r, _ := newTestAPI(t, "plan_create")
	dietToken, dietID := registerAndLogin(t, r, "dr.plan", model.RoleDietitian)
	registerUser(t, r, "plan-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "plan-danisan")

	plan := createPlan(t, r, dietToken, clientID, "Kilo verme programi")
	assert.Equal(t, dietID, plan.DietitianID)
	assert.Equal(t, clientID, plan.ClientID)
	assert.Equal(t, model.DietPlanActive, plan.Status)
	assert.NotNil(t, plan.Client)
	assert.NotNil(t, plan.Dietitian)
}

func TestCreateDietPlan_Validation(t *testing.T) {
	r, _ := newTestAPI(t, "plan_validate")
	dietToken, dietID := registerAndLogin(t, r, "dr.dogrula", model.RoleDietitian)
	registerUser(t, r, "dogrula-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "dogrula-danisan")

	// endDate before startDate
	w := doRequest(t, r, http.MethodPost, "/diet-plans", dietToken, map[string]interface{}{
		"title":     "Ters tarih",
		"startDate": "2026-09-30",
		"endDate":   "2026-09-01",
		"clientId":  clientID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// clientId pointing at a dietitian
	w = doRequest(t, r, http.MethodPost, "/diet-plans", dietToken, map[string]interface{}{
		"title":     "Yanlis taraf",
		"startDate": "2026-09-01",
		"endDate":   "2026-09-30",
		"clientId":  dietID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown status
	w = doRequest(t, r, http.MethodPost, "/diet-plans", dietToken, map[string]interface{}{
		"title":     "Bozuk durum",
		"startDate": "2026-09-01",
		"endDate":   "2026-09-30",
		"clientId":  clientID,
		"status":    "PAUSED",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDietPlan_ScopedListings(t *testing.T) {
	r, _ := newTestAPI(t, "plan_listings")
	dietToken, _ := registerAndLogin(t, r, "dr.liste", model.RoleDietitian)
	otherToken, _ := registerAndLogin(t, r, "dr.diger", model.RoleDietitian)
	registerUser(t, r, "liste-danisan", model.RoleClient)
	clientToken, clientID := loginUser(t, r, "liste-danisan")

	createPlan(t, r, dietToken, clientID, "Birinci plan")
	createPlan(t, r, otherToken, clientID, "Ikinci plan")

	// Dietitian sees only authored plans.
	w := doRequest(t, r, http.MethodGet, "/diet-plans/my-plans", dietToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var plans []model.DietPlan
	decodeData(t, w, &plans)
	assert.Len(t, plans, 1)
	assert.Equal(t, "Birinci plan", plans[0].Title)

	// Client sees both assigned plans, newest first.
	w = doRequest(t, r, http.MethodGet, "/diet-plans/my-assigned-plans", clientToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &plans)
	assert.Len(t, plans, 2)
	assert.Equal(t, "Ikinci plan", plans[0].Title)

	// Client cannot use the dietitian listing and vice versa.
	w = doRequest(t, r, http.MethodGet, "/diet-plans/my-plans", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(t, r, http.MethodGet, "/diet-plans/my-assigned-plans", dietToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The full listing is admin-only.
	w = doRequest(t, r, http.MethodGet, "/diet-plans", dietToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateDietPlan_OwnershipEnforced(t *testing.T) {
	r, _ := newTestAPI(t, "plan_ownership")
	ownerToken, _ := registerAndLogin(t, r, "dr.sahip", model.RoleDietitian)
	intruderToken, _ := registerAndLogin(t, r, "dr.yabanci", model.RoleDietitian)
	registerUser(t, r, "sahip-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "sahip-danisan")

	plan := createPlan(t, r, ownerToken, clientID, "Korunan plan")

	// Another dietitian cannot modify it.
	w := doRequest(t, r, http.MethodPatch, "/diet-plans/"+itoa(plan.ID), intruderToken, map[string]string{
		"title": "Ele gecirildi",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can.
	w = doRequest(t, r, http.MethodPatch, "/diet-plans/"+itoa(plan.ID), ownerToken, map[string]string{
		"title":  "Guncellenen plan",
		"status": "COMPLETED",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.DietPlan
	decodeData(t, w, &updated)
	assert.Equal(t, "Guncellenen plan", updated.Title)
	assert.Equal(t, model.DietPlanCompleted, updated.Status)
	// Untouched fields survive the partial update.
	assert.Equal(t, "Yulaf ezmesi", updated.Breakfast)
}

func TestDeleteDietPlan(t *testing.T) {
	r, db := newTestAPI(t, "plan_delete")
	ownerToken, _ := registerAndLogin(t, r, "dr.silen", model.RoleDietitian)
	intruderToken, _ := registerAndLogin(t, r, "dr.izinsiz", model.RoleDietitian)
	adminToken, _ := seedAdminAndLogin(t, r, db)
	registerUser(t, r, "silme-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "silme-danisan")

	first := createPlan(t, r, ownerToken, clientID, "Silinecek plan")
	second := createPlan(t, r, ownerToken, clientID, "Admin silecek")

	w := doRequest(t, r, http.MethodDelete, "/diet-plans/"+itoa(first.ID), intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/diet-plans/"+itoa(first.ID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin bypasses ownership.
	w = doRequest(t, r, http.MethodDelete, "/diet-plans/"+itoa(second.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.DietPlan{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDietPlan_RecipeAttachment(t *testing.T) {
	r, _ := newTestAPI(t, "plan_attach")
	ownerToken, _ := registerAndLogin(t, r, "dr.ekleyen", model.RoleDietitian)
	otherToken, _ := registerAndLogin(t, r, "dr.komsu", model.RoleDietitian)
	registerUser(t, r, "ekleme-danisan", model.RoleClient)
	clientToken, clientID := loginUser(t, r, "ekleme-danisan")

	own := createRecipe(t, r, ownerToken, "Kendi gizli tarifi", false)
	foreignPublic := createRecipe(t, r, otherToken, "Komsunun acik tarifi", true)
	foreignPrivate := createRecipe(t, r, otherToken, "Komsunun gizli tarifi", false)

	// Another dietitian's private recipe cannot be attached: that would
	// expose it to the assigned client.
	w := doRequest(t, r, http.MethodPost, "/diet-plans", ownerToken, map[string]interface{}{
		"title":     "Sizdiran plan",
		"startDate": "2026-09-01",
		"endDate":   "2026-09-30",
		"clientId":  clientID,
		"recipeIds": []uint{foreignPrivate.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing leaked to the client.
	w = doRequest(t, r, http.MethodGet, "/diet-plans/my-assigned-plans", clientToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var plans []model.DietPlan
	decodeData(t, w, &plans)
	assert.Len(t, plans, 0)

	// Own private and foreign public recipes attach; duplicate ids collapse
	// instead of failing the lookup.
	w = doRequest(t, r, http.MethodPost, "/diet-plans", ownerToken, map[string]interface{}{
		"title":     "Gecerli plan",
		"startDate": "2026-09-01",
		"endDate":   "2026-09-30",
		"clientId":  clientID,
		"recipeIds": []uint{own.ID, own.ID, foreignPublic.ID},
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var plan model.DietPlan
	decodeData(t, w, &plan)
	assert.Len(t, plan.Recipes, 2)

	// Same restriction on update.
	w = doRequest(t, r, http.MethodPatch, "/diet-plans/"+itoa(plan.ID), ownerToken, map[string]interface{}{
		"recipeIds": []uint{foreignPrivate.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDietPlan_NotFound(t *testing.T) {
	r, _ := newTestAPI(t, "plan_notfound")
	token, _ := registerAndLogin(t, r, "dr.yok", model.RoleDietitian)

	w := doRequest(t, r, http.MethodGet, "/diet-plans/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/diet-plans/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
