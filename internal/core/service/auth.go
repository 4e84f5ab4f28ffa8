package service

import (
	"context"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// RegisterRequest creates an email/password account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

// EmailLoginRequest logs in with email and password.
type EmailLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RequestOTPRequest asks the backend to text a code to a phone number.
type RequestOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// VerifyOTPRequest exchanges a texted code for a session.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
}

// IDTokenLoginRequest exchanges a third-party identity token for a session.
type IDTokenLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthAPI is the auth resource.
type AuthAPI struct {
	caller Caller
}

// NewAuthAPI creates an AuthAPI.
func NewAuthAPI(caller Caller) *AuthAPI {
	return &AuthAPI{caller: caller}
}

// Register creates an account. It does not sign in.
func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (domain.Ack, error) {
	var ack domain.Ack
	if err := a.caller.Call(ctx, domain.EndpointRegister, nil, req, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}

// EmailLogin logs in with email and password.
func (a *AuthAPI) EmailLogin(ctx context.Context, req EmailLoginRequest) (*domain.AuthResult, error) {
	return a.login(ctx, domain.EndpointEmailLogin, req)
}

// RequestOTP sends a one-time code to phone. Development backends echo
// the code in the result.
func (a *AuthAPI) RequestOTP(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	var out domain.OTPChallenge
	if err := a.caller.Call(ctx, domain.EndpointRequestOTP, nil, RequestOTPRequest{PhoneNumber: phone}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP exchanges a one-time code for a session token.
func (a *AuthAPI) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*domain.AuthResult, error) {
	return a.login(ctx, domain.EndpointVerifyOTP, req)
}

// LoginWithIDToken exchanges an identity token for a session token.
func (a *AuthAPI) LoginWithIDToken(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	return a.login(ctx, domain.EndpointLoginWithIDToken, IDTokenLoginRequest{IDToken: idToken})
}

func (a *AuthAPI) login(ctx context.Context, ep domain.Endpoint, body any) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := a.caller.Call(ctx, ep, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
