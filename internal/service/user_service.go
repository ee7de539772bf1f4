package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carproban-backend/internal/access"
	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/pkg/validator"
)

// UserService manages admin accounts. Account management is master data, so
// it is a super-admin capability.
type UserService interface {
	CreateAdmin(req *CreateAdminRequest, actor access.Capabilities) (*model.UserResponse, error)
	List(actor access.Capabilities) ([]model.UserResponse, error)
}

type CreateAdminRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	Role        string  `json:"role" validate:"required,oneof=SUPER_ADMIN OUTLET_ADMIN"`
	OutletID    *string `json:"outlet_id,omitempty"`
}

func parseUUIDField(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("%s is not a valid UUID", field)
	}
	return id, nil
}

type userService struct {
	userRepo   repository.UserRepository
	outletRepo repository.OutletRepository
}

func NewUserService(userRepo repository.UserRepository, outletRepo repository.OutletRepository) UserService {
	return &userService{userRepo: userRepo, outletRepo: outletRepo}
}

func (s *userService) CreateAdmin(req *CreateAdminRequest, actor access.Capabilities) (*model.UserResponse, error) {
	if !actor.CanManageMasterData {
		return nil, apperr.Authorization("admin accounts are managed by super admins only")
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", validator.FirstError(errs))
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		IsActive:    true,
	}

	// An outlet admin must be bound to exactly one existing outlet; a super
	// admin must not be bound at all.
	switch req.Role {
	case model.RoleOutletAdmin:
		if req.OutletID == nil {
			return nil, apperr.Validation("outlet_id is required for an outlet admin")
		}
		outletID, err := parseUUIDField("outlet_id", *req.OutletID)
		if err != nil {
			return nil, err
		}
		if _, err := s.outletRepo.FindByID(outletID); err != nil {
			return nil, apperr.NotFound("outlet", outletID.String())
		}
		user.OutletID = &outletID
	case model.RoleSuperAdmin:
		if req.OutletID != nil {
			return nil, apperr.Validation("a super admin is not bound to an outlet")
		}
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	user.CreatedBy = actor.UserID.String()
	user.UpdatedBy = actor.UserID.String()

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email %s is already registered", req.Email)
		}
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) List(actor access.Capabilities) ([]model.UserResponse, error) {
	if !actor.CanManageMasterData {
		return nil, apperr.Authorization("admin accounts are managed by super admins only")
	}
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}
