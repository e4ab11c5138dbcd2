package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in with 2FA complete, redirect to the dashboard.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Admin(w, r, "login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{},
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Admin(w, r, "login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": "An unexpected error occurred.", "Email": email},
		})
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.renderer.Admin(w, r, "login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": "Invalid email or password.", "Email": email},
		})
		return
	}

	// TwoFADone starts false; the user must complete 2FA before the
	// admin area opens up.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
	}
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Inkwell",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderSetupPage(w, r, key.Secret(), key.URL(), "")
}

// TwoFASetupSubmit validates the first code against the freshly stored
// secret and enables 2FA on success.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.renderSetupPage(w, r, *user.TOTPSecret, otpauthURL(user.Email, *user.TOTPSecret),
			"Invalid code. Please try again.")
		return
	}

	if err := a.userStore.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.complete2FA(w, r, sess)
}

// TwoFAVerifyPage renders the 2FA code entry form for users who already
// have 2FA set up.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	a.renderer.Admin(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
		Data:  map[string]any{},
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil || !user.TOTPEnabled {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.renderer.Admin(w, r, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	a.complete2FA(w, r, sess)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// complete2FA marks the session as fully authenticated and opens the
// admin area.
func (a *Auth) complete2FA(w http.ResponseWriter, r *http.Request, sess *session.Data) {
	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// renderSetupPage renders the 2FA setup page with the QR code for the
// given secret.
func (a *Auth) renderSetupPage(w http.ResponseWriter, r *http.Request, secret, url, errMsg string) {
	qrPNG, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
		"Secret": secret,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Admin(w, r, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data:  data,
	})
}

// otpauthURL rebuilds the provisioning URL for an existing secret so the
// setup page can re-render its QR code after a failed attempt.
func otpauthURL(email, secret string) string {
	return "otpauth://totp/Inkwell:" + email + "?secret=" + secret + "&issuer=Inkwell"
}
