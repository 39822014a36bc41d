package apperr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Kind is the machine-readable category of an error. Boundary layers switch on it
// instead of matching message text.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindItemNotFound
	KindProductNotFound
	KindFeatureDisabled
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindItemNotFound:
		return "ITEM_NOT_FOUND"
	case KindProductNotFound:
		return "PRODUCT_NOT_FOUND"
	case KindFeatureDisabled:
		return "FEATURE_DISABLED"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrValidation      = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrItemNotFound    = &Error{Kind: KindItemNotFound, Message: "item not found"}
	ErrProductNotFound = &Error{Kind: KindProductNotFound, Message: "product not found"}
	ErrFeatureDisabled = &Error{Kind: KindFeatureDisabled, Message: "feature disabled"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
)

type Error struct {
	Kind    Kind
	Message string
	// Fields holds the identifiers the error is about, e.g. "cart_id", "item_id".
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func CartNotFound(id fmt.Stringer) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Cart not found: '%s'", id),
		Fields:  map[string]string{"cart_id": id.String()},
	}
}

func OrderNotFound(id fmt.Stringer) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Order not found: '%s'", id),
		Fields:  map[string]string{"order_id": id.String()},
	}
}

func ProductNotFound(id fmt.Stringer) *Error {
	return &Error{
		Kind:    KindProductNotFound,
		Message: fmt.Sprintf("Product not found: '%s'", id),
		Fields:  map[string]string{"product_id": id.String()},
	}
}

func CartItemNotFound(itemID, cartID fmt.Stringer) *Error {
	return &Error{
		Kind:    KindItemNotFound,
		Message: fmt.Sprintf("Cart item not found: '%s' in cart '%s'", itemID, cartID),
		Fields:  map[string]string{"item_id": itemID.String(), "cart_id": cartID.String()},
	}
}

func OrderItemNotFound(itemID, orderID fmt.Stringer) *Error {
	return &Error{
		Kind:    KindItemNotFound,
		Message: fmt.Sprintf("Order item not found: '%s' in order '%s'", itemID, orderID),
		Fields:  map[string]string{"item_id": itemID.String(), "order_id": orderID.String()},
	}
}

func FeatureDisabled(name string) *Error {
	return &Error{
		Kind:    KindFeatureDisabled,
		Message: fmt.Sprintf("Feature toggle %s is not enabled", name),
		Fields:  map[string]string{"feature": name},
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// GRPCCode maps a kind onto the gRPC status code space shared by every transport.
func GRPCCode(k Kind) codes.Code {
	switch k {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound, KindItemNotFound, KindProductNotFound, KindFeatureDisabled:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}
