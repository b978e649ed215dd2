package types

type RegistrationStatus string

const (
	REGISTRATION_PENDING RegistrationStatus = "pending"
	REGISTRATION_PAID    RegistrationStatus = "paid"
)

type AppEnv string

const (
	Local      AppEnv = "local"
	Test       AppEnv = "test"
	Production AppEnv = "production"
)

const ROLE_ADMIN = "admin"

// RegistrationInput is validated by the registration service after trimming,
// so its rules live under the validate tag rather than binding.
type RegistrationInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone"`
	Qty     int     `json:"qty" validate:"min=1,max=10"`
	Dietary *string `json:"dietary"`
	Notes   *string `json:"notes"`
}

type CheckoutStartRequestBody struct {
	RegistrationInput
	Consent bool `json:"consent"`
}

type CreatePaymentIntentRequestBody struct {
	Amount         *float64          `json:"amount"`
	Currency       string            `json:"currency"`
	RegistrationID *uint             `json:"registrationId"`
	Metadata       map[string]string `json:"metadata"`
}

type LinkPaymentIntentRequestBody struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	RegistrationID  uint   `json:"registrationId" binding:"required,min=1"`
}

type ConfirmRequestBody struct {
	RegistrationID uint `json:"registrationId" binding:"required,min=1"`
}

type CheckInRequestBody struct {
	RegistrationID uint  `json:"registrationId" binding:"required,min=1"`
	CheckedIn      *bool `json:"checkedIn" binding:"required"`
}

type LoginRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegistrationURIParams struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type CheckoutStartResponse struct {
	RegistrationID uint `json:"registrationId"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type LinkPaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	RegistrationID  uint   `json:"registrationId"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type SessionInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type StripeHealth struct {
	SecretKeyMode string `json:"secretKeyMode"`
	HasSecretKey  bool   `json:"hasSecretKey"`
}

type HealthResponse struct {
	OK     bool         `json:"ok"`
	Stripe StripeHealth `json:"stripe"`
}
