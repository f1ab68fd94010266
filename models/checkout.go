package models

// Checkout states. A session moves shipping -> payment -> succeeded or
// failed. The only way out of failed is a retry that re-enters payment
// with the same order; succeeded sessions can only be replaced by a
// fresh session with a new order.
const (
	CheckoutStateShipping  = "shipping"
	CheckoutStatePayment   = "payment"
	CheckoutStateSucceeded = "succeeded"
	CheckoutStateFailed    = "failed"
)

// Side effects a checkout transition asks its caller to perform. The
// transition functions only compute the next session; the controller
// executes the effects in order and rolls the session back if one fails.
const (
	CheckoutEffectCreateOrder         = "create_order"
	CheckoutEffectCreateAuthorization = "create_authorization"
	CheckoutEffectClearCart           = "clear_cart"
	CheckoutEffectRedirectToOrder     = "redirect_to_order"
)

// CheckoutSession is the per-user checkout flow state. It is stored in
// the cookie session between requests, so every field must serialize.
type CheckoutSession struct {
	State           string `json:"state"`
	OrderID         uint   `json:"order_id"`
	RazorpayOrderID string `json:"razorpay_order_id"`
	LastError       string `json:"last_error,omitempty"`
}

// NewCheckoutSession starts a fresh checkout at the shipping step.
func NewCheckoutSession() CheckoutSession {
	return CheckoutSession{State: CheckoutStateShipping}
}

// SubmitShipping moves shipping -> payment once the shipping address has
// validated. The caller must create the order before requesting the
// authorization; if order creation fails the session stays on shipping.
func (s CheckoutSession) SubmitShipping() (CheckoutSession, []string, error) {
	if s.State != CheckoutStateShipping {
		return s, nil, ErrCheckoutTransition{From: s.State, To: CheckoutStatePayment}
	}
	next := s
	next.State = CheckoutStatePayment
	next.LastError = ""
	return next, []string{CheckoutEffectCreateOrder, CheckoutEffectCreateAuthorization}, nil
}

// ConfirmSucceeded moves payment -> succeeded on the client confirmation
// callback. This governs navigation only; settlement truth stays with
// the verification service and the reconciler.
func (s CheckoutSession) ConfirmSucceeded() (CheckoutSession, []string, error) {
	if s.State != CheckoutStatePayment {
		return s, nil, ErrCheckoutTransition{From: s.State, To: CheckoutStateSucceeded}
	}
	next := s
	next.State = CheckoutStateSucceeded
	next.LastError = ""
	return next, []string{CheckoutEffectClearCart, CheckoutEffectRedirectToOrder}, nil
}

// Fail moves payment -> failed after an authorization, confirmation or
// verification failure. The order stays pending.
func (s CheckoutSession) Fail(reason string) (CheckoutSession, []string, error) {
	if s.State != CheckoutStatePayment {
		return s, nil, ErrCheckoutTransition{From: s.State, To: CheckoutStateFailed}
	}
	next := s
	next.State = CheckoutStateFailed
	next.LastError = reason
	return next, nil, nil
}

// Retry re-enters payment from failed, reusing the existing order. The
// caller reuses the active transaction, or requests a new authorization
// when the prior attempt reached a terminal status.
func (s CheckoutSession) Retry() (CheckoutSession, []string, error) {
	if s.State != CheckoutStateFailed {
		return s, nil, ErrCheckoutTransition{From: s.State, To: CheckoutStatePayment}
	}
	if s.OrderID == 0 {
		return s, nil, ErrCheckoutTransition{From: s.State, To: CheckoutStatePayment}
	}
	next := s
	next.State = CheckoutStatePayment
	next.LastError = ""
	return next, []string{CheckoutEffectCreateAuthorization}, nil
}

// ErrCheckoutTransition reports an illegal checkout transition.
type ErrCheckoutTransition struct {
	From string
	To   string
}

func (e ErrCheckoutTransition) Error() string {
	return "invalid checkout transition from " + e.From + " to " + e.To
}
