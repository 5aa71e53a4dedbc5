package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/auth/middleware"
	"github.com/innovo-consulting/funding-console/internal/auth/view"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/web"
)

// LoginPage renders the login screen; ?mode=signup opens the signup tab.
func (h *Handler) LoginPage(c *gin.Context) {
	form := view.NewLoginForm(view.ParseMode(c.Query("mode")))
	c.HTML(http.StatusOK, web.LoginPage, web.Login{
		Form:       form,
		Submitting: h.inflight.Busy(loginKey(c)),
	})
}

// Submit logs in or registers depending on the posted mode.
func (h *Handler) Submit(c *gin.Context) {
	form := view.NewLoginForm(view.ParseMode(c.PostForm("mode")))
	form.Email = c.PostForm("email")
	form.Password = c.PostForm("password")

	done, err := h.inflight.Begin(loginKey(c))
	if err != nil {
		form.Error = err.Error()
		c.HTML(http.StatusConflict, web.LoginPage, web.Login{Form: form, Submitting: true})
		return
	}
	defer done()

	sess := auth.Session(c)
	switch form.Submit(c.Request.Context(), h.authService(c), sess) {
	case view.OutcomeAuthenticated:
		c.Redirect(http.StatusSeeOther, middleware.ProgramsPath)
	case view.OutcomeInvalid:
		form.Password = ""
		c.HTML(http.StatusUnprocessableEntity, web.LoginPage, web.Login{Form: form})
	default:
		form.Password = ""
		c.HTML(http.StatusOK, web.LoginPage, web.Login{Form: form})
	}
}

// Logout clears the viewer's token and returns to the login screen.
func (h *Handler) Logout(c *gin.Context) {
	if err := auth.Session(c).Logout(c.Request.Context()); err != nil {
		logging.NewLogger(c.Request.Context()).LogError("logout", err)
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// SessionStatus reports whether the viewer holds a token.
func (h *Handler) SessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": auth.Session(c).IsAuthenticated()})
}

func loginKey(c *gin.Context) string {
	return auth.SessionID(c) + ":login"
}
