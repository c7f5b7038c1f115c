package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/internaltypes"
)

// Member-facing messages.
const (
	MsgSignUpMissingFields = "Preencha e-mail e senha"
	MsgSignInMissingFields = "Digite e-mail e senha"
	MsgSignUpFailed        = "Erro no cadastro: "
	MsgCheckInbox          = "✅ Quase pronto! Verifique seu e-mail e clique no link para ativar sua conta."
	MsgEmailNotConfirmed   = "E-mail ainda não confirmado! Verifique sua caixa de entrada."
	MsgInvalidCredentials  = "Dados incorretos ou usuário inexistente."
	MsgConfirmLinkInvalid  = "Link de confirmação inválido ou expirado."
	MsgSignOutFailed       = "Erro ao sair da conta."
)

var ErrMissingCredentials = errors.New("email and password are required")

// Credentials is the sign-in / sign-up form.
type Credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

var validate = validator.New()

func credentials(email, password string) (Credentials, error) {
	c := Credentials{Email: user.NormalizeEmail(email), Password: password}
	if err := validate.Struct(c); err != nil {
		return c, errors.Join(ErrMissingCredentials, err)
	}
	return c, nil
}

type AuthService struct {
	Auth     user.AuthProvider
	Profiles user.ProfileStore
	// RedirectTo is where confirmation links land.
	RedirectTo string
	Now        func() time.Time
}

func (a AuthService) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// SignUp creates the account and its display profile. The member still has to
// confirm the address before signing in.
func (a AuthService) SignUp(ctx context.Context, email, password string) (user.User, error) {
	c, err := credentials(email, password)
	if err != nil {
		return user.User{}, internaltypes.NewUserError(MsgSignUpMissingFields, err)
	}
	u, err := a.Auth.SignUp(ctx, c.Email, c.Password, user.SignUpOptions{RedirectTo: a.RedirectTo})
	if err != nil {
		slog.Warn("auth_event", "event", "sign_up_failed", "email", c.Email, "err", err)
		return user.User{}, internaltypes.NewUserError(MsgSignUpFailed+err.Error(), err)
	}
	slog.Info("auth_event", "event", "sign_up", "user_id", u.ID)
	if u.ID != "" && a.Profiles != nil {
		p := user.Profile{ID: u.ID, DisplayName: user.DisplayNameFromEmail(c.Email), UpdatedAt: a.now()}
		if err := a.Profiles.Upsert(ctx, p); err != nil {
			slog.Error("profile upsert failed", "user_id", u.ID, "err", err)
		}
	}
	return u, nil
}

func (a AuthService) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	c, err := credentials(email, password)
	if err != nil {
		return nil, internaltypes.NewUserError(MsgSignInMissingFields, err)
	}
	s, err := a.Auth.SignInWithPassword(ctx, c.Email, c.Password)
	if err != nil {
		slog.Warn("auth_event", "event", "sign_in_failed", "email", c.Email, "err", err)
		if errors.Is(err, user.ErrEmailNotConfirmed) {
			return nil, internaltypes.NewUserError(MsgEmailNotConfirmed, err)
		}
		return nil, internaltypes.NewUserError(MsgInvalidCredentials, err)
	}
	slog.Info("auth_event", "event", "sign_in", "user_id", s.User.ID)
	return s, nil
}

func (a AuthService) SignOut(ctx context.Context) error {
	if err := a.Auth.SignOut(ctx); err != nil {
		slog.Warn("auth_event", "event", "sign_out_failed", "err", err)
		return internaltypes.NewUserError(MsgSignOutFailed, err)
	}
	slog.Info("auth_event", "event", "sign_out")
	return nil
}

// CompleteSignIn trades the code from a confirmation link for a session.
func (a AuthService) CompleteSignIn(ctx context.Context, code string) (*user.Session, error) {
	if code == "" {
		return nil, internaltypes.NewUserError(MsgConfirmLinkInvalid, user.ErrInvalidCode)
	}
	s, err := a.Auth.ExchangeCode(ctx, code)
	if err != nil {
		slog.Warn("auth_event", "event", "code_exchange_failed", "err", err)
		return nil, internaltypes.NewUserError(MsgConfirmLinkInvalid, err)
	}
	slog.Info("auth_event", "event", "email_confirmed", "user_id", s.User.ID)
	return s, nil
}
