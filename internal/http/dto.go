package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AddItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required,mongodb"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

type WishlistItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required,mongodb"`
}

// PlaceOrderRequestDTO is only decoded here. Field rules are checked by the
// checkout service once it knows the cart is not empty.
type PlaceOrderRequestDTO struct {
	Address     string `json:"address"`
	PaymentType string `json:"paymentType"`
	UpiID       string `json:"upiId"`
}

// UpdateProfileRequestDTO fields are all optional. The service checks them.
type UpdateProfileRequestDTO struct {
	Name      *string                  `json:"name"`
	Phone     *string                  `json:"phone"`
	Gender    *string                  `json:"gender"`
	DOB       *string                  `json:"dob"`
	Addresses []service.AddressRequest `json:"addresses"`
}

type UpdateProfileResponse struct {
	Message string          `json:"message"`
	User    *domain.Profile `json:"user"`
}

type ToggleWishlistResponse struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
}

type OrdersResponse struct {
	Orders interface{} `json:"orders"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			respondError(w, http.StatusBadRequest, "invalid_request", "request body is empty")
		default:
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		}
		return false
	}

	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", describeValidation(err))
		return false
	}
	return true
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "mongodb":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 99", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// objectIDParam parses a path parameter as an ObjectID, answering 400 when
// it is malformed.
func objectIDParam(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", fmt.Sprintf("%s must be a valid id", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
