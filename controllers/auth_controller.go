package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solenne/shopcore/cache"
	"github.com/solenne/shopcore/config"
	"github.com/solenne/shopcore/database"
	"github.com/solenne/shopcore/dto"
	"github.com/solenne/shopcore/middleware"
	"github.com/solenne/shopcore/models"
	"github.com/solenne/shopcore/utils"
)

// AuthController owns the signup/login/logout/refresh flows. The only state
// it touches lives in the user store and the session cache.
type AuthController struct {
	cfg      config.Config
	users    database.UserStore
	sessions cache.Cache
	tokens   *utils.TokenManager
	log      *zap.SugaredLogger
}

func NewAuthController(
	cfg config.Config,
	users database.UserStore,
	sessions cache.Cache,
	tokens *utils.TokenManager,
	log *zap.SugaredLogger,
) *AuthController {
	return &AuthController{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
	}
}

func refreshTokenKey(userID string) string {
	return "refresh_token:" + userID
}

func (a *AuthController) cookieOptions() utils.CookieOptions {
	return utils.CookieOptions{
		Secure:     a.cfg.IsProduction(),
		AccessTTL:  a.tokens.AccessTTL(),
		RefreshTTL: a.tokens.RefreshTTL(),
	}
}

// issueSession generates the token pair, stores the refresh token in the
// session cache (superseding any previous one for this user) and sets both
// cookies.
func (a *AuthController) issueSession(c *gin.Context, userID string) error {
	accessToken, err := a.tokens.IssueAccessToken(userID)
	if err != nil {
		return err
	}
	refreshToken, err := a.tokens.IssueRefreshToken(userID)
	if err != nil {
		return err
	}

	if err := a.sessions.Set(c.Request.Context(), refreshTokenKey(userID), refreshToken, a.tokens.RefreshTTL()); err != nil {
		return err
	}

	utils.SetAuthCookies(c, accessToken, refreshToken, a.cookieOptions())
	return nil
}

func (a *AuthController) Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		ctx := c.Request.Context()

		existing, err := a.users.FindByEmail(ctx, body.Email)
		if err != nil {
			a.log.Errorw("signup: user lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "User already exists",
			})
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		user, err := a.users.Create(ctx, &models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         models.RoleCustomer,
		})
		if err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "User already exists",
				})
				return
			}
			a.log.Errorw("signup: user create failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		if err := a.issueSession(c, user.ID.Hex()); err != nil {
			a.log.Errorw("signup: session issue failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"user":    user.Public(),
		})
	}
}

func (a *AuthController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		user, err := a.users.FindByEmail(c.Request.Context(), body.Email)
		if err != nil {
			a.log.Errorw("login: user lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		// Absent user and wrong password are indistinguishable on purpose.
		if user == nil || utils.CheckPassword(user.PasswordHash, body.Password) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid Credentials.",
			})
			return
		}

		if err := a.issueSession(c, user.ID.Hex()); err != nil {
			a.log.Errorw("login: session issue failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user.Public(),
		})
	}
}

func (a *AuthController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Cookies go first so a cache failure cannot leave the client
		// half logged out.
		refreshToken, _ := c.Cookie(utils.RefreshTokenCookie)
		utils.ClearAuthCookies(c, a.cookieOptions())

		if refreshToken != "" {
			claims, err := a.tokens.VerifyRefreshToken(refreshToken)
			if err != nil {
				// Best-effort invalidation: an unreadable token still
				// logs the client out.
				a.log.Debugw("logout: refresh token unreadable", "error", err)
			} else if err := a.sessions.Del(c.Request.Context(), refreshTokenKey(claims.UserID)); err != nil {
				a.log.Errorw("logout: session delete failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged out successfully.",
		})
	}
}

func (a *AuthController) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie(utils.RefreshTokenCookie)
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "No refresh token provided.",
			})
			return
		}

		claims, err := a.tokens.VerifyRefreshToken(refreshToken)
		if err != nil {
			// Expired and malformed are logged apart but answered alike.
			a.log.Debugw("refresh: token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired refresh token.",
			})
			return
		}

		stored, err := a.sessions.Get(c.Request.Context(), refreshTokenKey(claims.UserID))
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			a.log.Errorw("refresh: session lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		// Only the single cached token per user is accepted; older tokens
		// still verify cryptographically but die here.
		if stored != refreshToken {
			a.log.Debugw("refresh: cache mismatch", "userId", claims.UserID)
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid refresh token.",
			})
			return
		}

		accessToken, err := a.tokens.IssueAccessToken(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		// The refresh token and its cache entry stay as they are; only the
		// access token is renewed.
		utils.SetAccessCookie(c, accessToken, a.cookieOptions())

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Token refreshed successfully.",
			"accessToken": accessToken,
		})
	}
}

func (a *AuthController) Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user.Public(),
		})
	}
}
