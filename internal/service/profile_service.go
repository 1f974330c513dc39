package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProfileRequest is a partial update. Absent fields keep their value.
type ProfileRequest struct {
	Name      *string          `json:"name" validate:"omitempty,max=100"`
	Phone     *string          `json:"phone" validate:"omitempty,len=10,number"`
	Gender    *string          `json:"gender" validate:"omitempty,oneof=male female other"`
	DOB       *time.Time       `json:"dob"`
	Addresses []AddressRequest `json:"addresses" validate:"omitempty,max=10,dive"`
}

type AddressRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,len=10,number"`
	Door     string `json:"door" validate:"required,max=50"`
	Street   string `json:"street" validate:"required,max=200"`
	District string `json:"district" validate:"required,max=100"`
	State    string `json:"state" validate:"max=100"`
	Country  string `json:"country" validate:"required,max=100"`
	Pincode  string `json:"pincode" validate:"required,number,max=10"`
}

var profileMessages = map[string]string{
	"phone":  "must be 10 digits",
	"gender": "must be male, female or other",
}

type ProfileService struct {
	repo     repository.ProfileRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		repo:     repo,
		validate: newValidator(),
		now:      time.Now,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile checks the request and applies it. Gender is matched without
// regard to case and stored lower case.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req ProfileRequest) (*domain.Profile, error) {
	if req.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*req.Gender))
		req.Gender = &g
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fieldError(err, profileMessages)
	}
	if req.DOB != nil && req.DOB.After(s.now()) {
		return nil, invalid("dob", "must not be in the future")
	}

	upd := domain.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
		DOB:   req.DOB,
	}
	if req.Gender != nil {
		g := domain.Gender(*req.Gender)
		upd.Gender = &g
	}
	if req.Addresses != nil {
		upd.Addresses = make([]domain.Address, 0, len(req.Addresses))
		for _, a := range req.Addresses {
			upd.Addresses = append(upd.Addresses, domain.Address(a))
		}
	}

	profile, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("profile updated", zap.String("user_id", userID.Hex()))
	return profile, nil
}
