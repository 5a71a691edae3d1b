package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinical-scheduling/internal/converter"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/delivery/http/middleware"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/domain/repository"
	"clinical-scheduling/internal/service"
	"clinical-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthUsecase interface {
	ObtainToken(ctx context.Context, req *dto.TokenObtainRequest) (*dto.TokenPairResponse, error)
	RefreshToken(ctx context.Context, req *dto.TokenRefreshRequest) (*dto.AccessTokenResponse, error)
	BlacklistToken(ctx context.Context, req *dto.TokenRefreshRequest) error
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		auditService: auditService,
		jwtService:   jwtService,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming burns one bcrypt comparison so unknown usernames cost the same as wrong passwords.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (u *authUsecase) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByUsername(tx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Username: req.Username,
		Password: string(hashedPassword),
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	res := converter.UserToResponse(user)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionUserCreate, entity.AuditEntityUser, user.ID.String(), res); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return res, nil
}

func (u *authUsecase) ObtainToken(ctx context.Context, req *dto.TokenObtainRequest) (*dto.TokenPairResponse, error) {
	// Read-only lookup, no transaction needed
	user, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil {
		equalizeTiming(req.Password)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrInvalidCredentials
	}

	accessToken, _, err := u.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenRepo.Register(ctx, user.ID.String(), refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to register refresh token: %+v", err)
		return nil, err
	}

	u.recordSession(ctx, entity.AuditActionUserLogin, user.ID, user.Username)

	return &dto.TokenPairResponse{
		Access:    accessToken,
		Refresh:   refreshToken,
		ExpiresIn: u.accessExpiresIn(),
	}, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.TokenRefreshRequest) (*dto.AccessTokenResponse, error) {
	claims, err := u.jwtService.ValidateTokenOfType(req.Refresh, jwt.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenRepo.Exists(ctx, claims.UserID.String(), claims.TokenID())
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	accessToken, _, err := u.jwtService.GenerateAccessToken(claims.UserID, claims.Username)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	return &dto.AccessTokenResponse{
		Access:    accessToken,
		ExpiresIn: u.accessExpiresIn(),
	}, nil
}

func (u *authUsecase) accessExpiresIn() int64 {
	return int64(u.jwtService.GetAccessExpiry() / time.Second)
}

// BlacklistToken revokes a refresh token. Access tokens already issued stay valid until they expire.
func (u *authUsecase) BlacklistToken(ctx context.Context, req *dto.TokenRefreshRequest) error {
	claims, err := u.jwtService.ValidateTokenOfType(req.Refresh, jwt.RefreshToken)
	if err != nil {
		return ErrInvalidToken
	}

	userID := claims.UserID.String()
	exists, err := u.tokenRepo.Exists(ctx, userID, claims.TokenID())
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return err
	}
	if !exists {
		return ErrTokenRevoked
	}

	if err := u.tokenRepo.Revoke(ctx, userID, claims.TokenID()); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return err
	}

	u.recordSession(ctx, entity.AuditActionUserLogout, claims.UserID, claims.Username)

	return nil
}

// recordSession audits login and logout. A failed audit write does not fail the request.
func (u *authUsecase) recordSession(ctx context.Context, action string, userID uuid.UUID, username string) {
	ctx = middleware.WithUser(ctx, userID, username)
	if err := u.auditService.LogCreate(ctx, u.db.WithContext(ctx), action, entity.AuditEntityUser, userID.String(), nil); err != nil {
		u.log.Warnf("Failed to audit %s: %+v", action, err)
	}
}
