package endpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"fullName"`
	Role        model.Role `json:"role"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	AccessToken string     `json:"accessToken"`
}

// helper types to keep the login flow flat
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C        *gin.Context
	DB       *gorm.DB
	Username string
	CI       clientInfo
}

// respondLoginRejected sends the one generic 401 used for both unknown
// usernames and wrong passwords, so the two cases cannot be told apart.
func respondLoginRejected(ctx loginContext, reason string) {
	util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, reason)
	util.CallUserNotAuthorized(ctx.C, util.APIErrorParams{
		Msg: "Invalid username or password",
		Err: fmt.Errorf("invalid username or password"),
	})
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	var user model.User
	err := ctx.DB.Where("username = ?", ctx.Username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		respondLoginRejected(ctx, "user not found")
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "database error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func isAccountLocked(user *model.User) (bool, time.Time) {
	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		return true, time.Unix(*user.LockedUntil, 0)
	}
	return false, time.Time{}
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if locked, expiry := isAccountLocked(user); locked {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "account locked")
		util.CallUserForbidden(ctx.C, util.APIErrorParams{
			Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", expiry.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return false
	}
	return true
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= maxFailedLogins {
		lockUntil := time.Now().Add(lockoutDuration).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(user.ID, user.Username, ci.IP, "too many failed login attempts")
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Username, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "password verification error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if !match {
		incrementFailedAttempts(ctx.DB, user, ctx.CI)
		respondLoginRejected(ctx, "invalid password")
		return false
	}
	return true
}

// upgradeLegacyPasswordIfNeeded rehashes HMAC-era passwords with argon2id
// on a successful login. Best-effort.
func upgradeLegacyPasswordIfNeeded(db *gorm.DB, user *model.User, plain string, ci clientInfo) error {
	if !util.IsLegacyHash(user.Password) {
		return nil
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.PasswordSalt = salt
	if err := db.Save(user).Error; err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Username:  user.Username,
			IP:        ci.IP,
			Message:   fmt.Sprintf("Failed to upgrade password hash: %v", err),
		})
		return err
	}
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventPasswordChanged,
		UserID:    fmt.Sprintf("%d", user.ID),
		Username:  user.Username,
		IP:        ci.IP,
		Message:   "Upgraded password hash to Argon2",
	})
	return nil
}

func recordSession(db *gorm.DB, user model.User, token string, ci clientInfo) (model.Session, error) {
	session := model.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(util.TokenTTL),
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	err := db.Create(&session).Error
	return session, err
}

// Login authenticates a user by username/password and issues an access
// token. Unknown usernames and wrong passwords produce the identical
// response.
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Username: req.Username, CI: ci}

	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}

	if !ensureAccountNotLocked(ctx, &user) {
		return
	}

	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}

	if err := resetFailedAttempts(db, &user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Username:  user.Username,
			IP:        ci.IP,
			Message:   fmt.Sprintf("Failed to reset failed attempts: %v", err),
		})
	}

	_ = upgradeLegacyPasswordIfNeeded(db, &user, req.Password, ci)

	tokenString, err := util.GenerateToken(user)
	if err != nil {
		util.LogLoginFailure(user.Username, ci.IP, ci.Agent, "token generation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	if _, err := recordSession(db, user, tokenString, ci); err != nil {
		util.LogLoginFailure(user.Username, ci.IP, ci.Agent, "session creation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	_ = util.CacheSession(user.ID, user.Role, tokenString, util.TokenTTL)

	util.LogLoginSuccess(user.ID, user.Username, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Login successful",
		Data: LoginResponse{
			ID:          user.ID,
			Username:    user.Username,
			FullName:    user.FullName,
			Role:        user.Role,
			Email:       user.Email,
			Phone:       user.Phone,
			AccessToken: tokenString,
		},
	})
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func ensureUsernameAvailable(c *gin.Context, db *gorm.DB, username string) bool {
	var existing model.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true
	}
	if err == nil {
		util.CallUserConflict(c, util.APIErrorParams{
			Msg: "Username already exists",
			Err: fmt.Errorf("username already exists"),
		})
		return false
	}
	util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
	return false
}

// Register creates a dietitian or client account. Admin accounts cannot
// be self-registered; the only admin comes from the startup seed.
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	role, ok := model.ParseRole(req.Role)
	if !ok || role == model.RoleAdmin {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Role must be DIYETISYEN or DANISAN",
			Err: fmt.Errorf("invalid role %q", req.Role),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !ensureUsernameAvailable(c, db, req.Username) {
		return
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return
	}
	hashedPassword, err := util.HashPasswordArgon2(req.Password, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return
	}

	newUser := model.User{
		Username:     strings.TrimSpace(req.Username),
		Password:     hashedPassword,
		PasswordSalt: salt,
		Role:         role,
		FullName:     util.NormalizeName(req.FullName),
		Email:        req.Email,
		Phone:        req.Phone,
	}

	if err := db.Create(&newUser).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegisterSuccess,
		UserID:    fmt.Sprintf("%d", newUser.ID),
		Username:  newUser.Username,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   "User registered successfully",
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Registration successful",
		Data: newUser.Public(),
	})
}

// bearerToken re-extracts the raw token for session bookkeeping.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

// Logout removes the session record for the presented token.
func Logout(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	token := bearerToken(c)
	if token != "" {
		if err := db.Where("session_token = ?", token).Delete(&model.Session{}).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
			return
		}
		_ = util.DropSession(who.ID, token)
	}

	util.LogLogout(who.ID, who.Username, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}

func loadUserOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.User, bool) {
	var user model.User
	err := db.First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
		return model.User{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return model.User{}, false
	}
	return user, true
}

// GetProfile returns the authenticated user's own record.
func GetProfile(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := loadUserOrRespond(c, db, who.ID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: user})
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UpdateProfile partially updates the caller's own record. Only provided
// fields overwrite; a password change invalidates other sessions.
func UpdateProfile(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := loadUserOrRespond(c, db, who.ID)
	if !ok {
		return
	}

	if req.FullName != nil {
		user.FullName = util.NormalizeName(*req.FullName)
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	passwordChanged := false
	if req.Password != nil && *req.Password != "" {
		salt, err := util.GenerateSalt()
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
			return
		}
		hashed, err := util.HashPasswordArgon2(*req.Password, salt)
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
			return
		}
		user.Password = hashed
		user.PasswordSalt = salt
		passwordChanged = true
	}

	if err := db.Save(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}

	if passwordChanged {
		_ = util.InvalidateUserSessions(user.ID)
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventPasswordChanged,
			UserID:    fmt.Sprintf("%d", user.ID),
			Username:  user.Username,
			IP:        c.ClientIP(),
			Message:   "User changed own password",
		})
	}
	util.UserCacheSet(user.ID, user.Username)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile updated", Data: user})
}

// DeleteProfile removes the caller's own account. Admin accounts refuse
// self-deletion so the seed admin cannot disappear.
func DeleteProfile(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := loadUserOrRespond(c, db, who.ID)
	if !ok {
		return
	}

	if user.Role == model.RoleAdmin {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Admin users cannot delete their own account",
			Err: fmt.Errorf("admin self-deletion refused"),
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete account", Err: err})
		return
	}

	_ = util.InvalidateUserSessions(user.ID)
	util.UserCacheEvict(user.ID)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventAccountDeleted,
		UserID:    fmt.Sprintf("%d", user.ID),
		Username:  user.Username,
		IP:        c.ClientIP(),
		Message:   "User deleted own account",
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Account deleted successfully"})
}

func listUsersByRole(c *gin.Context, role model.Role, msg string) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var users []model.User
	if err := db.Where("role = ?", role).Order("full_name ASC").Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list users", Err: err})
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		p := u.Public()
		// Role is implied by the endpoint; keep the payload minimal.
		p.Role = ""
		public = append(public, p)
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg, Data: public})
}

// ListClients returns all client accounts, for dietitians assigning
// plans and appointments.
func ListClients(c *gin.Context) {
	listUsersByRole(c, model.RoleClient, "Clients retrieved")
}

// ListDietitians returns all dietitian accounts, for clients requesting
// appointments.
func ListDietitians(c *gin.Context) {
	listUsersByRole(c, model.RoleDietitian, "Dietitians retrieved")
}

// ListUsers returns every account. Admin only.
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	q := parseListQuery(c)
	query := db.Model(&model.User{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?", kw, kw, kw)
	}

	// total reflects the keyword filter, not the page window.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count users", Err: err})
		return
	}

	var users []model.User
	if err := applyListQuery(query.Order("id ASC"), q).Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list users", Err: err})
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Users retrieved",
		Data: map[string]interface{}{"users": public, "total": total},
	})
}

// DeleteUser removes an account by id. Admin only; admin rows are
// refused so the seed admin survives. No cascade: the user's plans,
// appointments and recipes keep their rows.
func DeleteUser(c *gin.Context) {
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user, ok := loadUserOrRespond(c, db, id)
	if !ok {
		return
	}

	if user.Role == model.RoleAdmin {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Cannot delete admin users",
			Err: fmt.Errorf("admin deletion refused"),
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	_ = util.InvalidateUserSessions(user.ID)
	util.UserCacheEvict(user.ID)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventAccountDeleted,
		UserID:    fmt.Sprintf("%d", user.ID),
		Username:  user.Username,
		IP:        c.ClientIP(),
		Message:   "User deleted by admin",
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "User deleted successfully",
		Data: map[string]uint{"deletedUserId": user.ID},
	})
}
