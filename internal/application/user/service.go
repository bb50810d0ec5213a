// Package user provides the application layer for accounts, biometric
// profiles and the executed-workout log.
package user

import (
	"context"
	"encoding/json"
	errs "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitforge/v1/internal/domain/user"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/errors"
)

const userCacheTTL = 5 * time.Minute

// UserService implements account management use cases
type UserService struct {
	userRepo  outbound.UserRepository
	cache     outbound.CacheRepository
	jwtSecret string
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	cache outbound.CacheRepository,
	jwtSecret string,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: jwtSecret,
		logger:    logger.Named("user-service"),
	}
}

// RegisterCommand contains user registration data
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginCommand contains user login data
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileCommand contains the biometric profile fields
type ProfileCommand struct {
	HeightCm      float64  `json:"height_cm" validate:"required,gt=0"`
	WeightKg      float64  `json:"weight_kg" validate:"required,gt=0"`
	BirthDate     string   `json:"birth_date" validate:"required"`
	Sex           string   `json:"sex" validate:"required,oneof=male female other"`
	ActivityLevel string   `json:"activity_level" validate:"required"`
	Goal          string   `json:"goal" validate:"required"`
	Allergies     []string `json:"allergies"`
}

// LogWorkoutCommand records one executed day of the current plan
type LogWorkoutCommand struct {
	Day   string `json:"day" validate:"required"`
	Notes string `json:"notes" validate:"max=2000"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	IsActive  bool        `json:"is_active"`
	Profile   *ProfileDTO `json:"profile,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ProfileDTO represents the biometric profile
type ProfileDTO struct {
	HeightCm      float64  `json:"height_cm"`
	WeightKg      float64  `json:"weight_kg"`
	BirthDate     string   `json:"birth_date"`
	Sex           string   `json:"sex"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
	Allergies     []string `json:"allergies"`
}

// WorkoutRunDTO represents one logged workout
type WorkoutRunDTO struct {
	ID          uuid.UUID `json:"id"`
	Day         string    `json:"day"`
	Notes       string    `json:"notes,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
}

// AuthResponse contains authentication response data
type AuthResponse struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, cmd RegisterCommand) (*AuthResponse, error) {
	s.logger.Info("Registering new user", zap.String("email", cmd.Email))

	if existing, err := s.userRepo.FindByEmail(ctx, cmd.Email); err == nil && existing != nil {
		return nil, errors.New(errors.CodeEmailAlreadyExists, "An account with this email already exists")
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationFailed, err.Error())
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to save user")
	}

	token, expiresIn, err := s.generateToken(newUser)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate token")
	}

	s.logger.Info("User registered",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)

	return &AuthResponse{
		User:        entityToDTO(newUser),
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

// Login authenticates a user
func (s *UserService) Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error) {
	userEntity, err := s.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidCredentials, "Invalid email or password")
	}

	if err := userEntity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", cmd.Email))
		return nil, errors.New(errors.CodeInvalidCredentials, "Invalid email or password")
	}

	if !userEntity.IsActive() {
		return nil, errors.New(errors.CodeForbidden, "Account is deactivated")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, userEntity.ID()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	token, expiresIn, err := s.generateToken(userEntity)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate token")
	}

	s.logger.Info("User logged in", zap.String("user_id", userEntity.ID().String()))

	return &AuthResponse{
		User:        entityToDTO(userEntity),
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

// GetUserByID retrieves a user, reading through the cache
func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	cacheKey := "user:" + userID.String()
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var dto UserDTO
			if err := json.Unmarshal(cached, &dto); err == nil {
				return &dto, nil
			}
		}
	}

	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errs.Is(err, user.ErrUserNotFound) {
			return nil, errors.New(errors.CodeUserNotFound, "user not found")
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load user")
	}

	dto := entityToDTO(userEntity)
	if s.cache != nil {
		if encoded, err := json.Marshal(dto); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, userCacheTTL); err != nil {
				s.logger.Debug("Failed to cache user", zap.Error(err))
			}
		}
	}
	return &dto, nil
}

// UpdateProfile replaces the user's biometric profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, cmd ProfileCommand) (*ProfileDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.CodeUserNotFound, "user not found")
	}

	birthDate, err := time.Parse("2006-01-02", cmd.BirthDate)
	if err != nil {
		return nil, errors.New(errors.CodeValidationFailed, "birth_date must be YYYY-MM-DD")
	}

	profile := &user.Profile{
		HeightCm:      cmd.HeightCm,
		WeightKg:      cmd.WeightKg,
		BirthDate:     birthDate,
		Sex:           user.Sex(cmd.Sex),
		ActivityLevel: user.ActivityLevel(cmd.ActivityLevel),
		Goal:          user.Goal(cmd.Goal),
		Allergies:     cmd.Allergies,
	}
	if err := userEntity.UpdateProfile(profile); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationFailed, err.Error())
	}

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to update profile")
	}
	s.invalidate(ctx, userID)

	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	dto := profileToDTO(userEntity.Profile())
	return dto, nil
}

// GetProfile returns the user's biometric profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.CodeUserNotFound, "user not found")
	}
	if userEntity.Profile() == nil {
		return nil, errors.New(errors.CodeNotFound, "No profile yet")
	}
	return profileToDTO(userEntity.Profile()), nil
}

// LogWorkout appends one executed-day entry to the user's log
func (s *UserService) LogWorkout(ctx context.Context, userID uuid.UUID, cmd LogWorkoutCommand) (*WorkoutRunDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.CodeUserNotFound, "user not found")
	}

	run := user.WorkoutRun{
		ID:          uuid.New(),
		Day:         cmd.Day,
		Notes:       cmd.Notes,
		PerformedAt: time.Now(),
	}
	if err := s.userRepo.AddWorkoutRun(ctx, userEntity.ID(), run); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to log workout")
	}

	s.logger.Info("Workout logged",
		zap.String("user_id", userID.String()),
		zap.String("day", run.Day),
	)
	return &WorkoutRunDTO{ID: run.ID, Day: run.Day, Notes: run.Notes, PerformedAt: run.PerformedAt}, nil
}

// ListWorkouts returns the executed-workout log, newest first
func (s *UserService) ListWorkouts(ctx context.Context, userID uuid.UUID) ([]WorkoutRunDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.CodeUserNotFound, "user not found")
	}

	runs := userEntity.Workouts()
	out := make([]WorkoutRunDTO, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		out = append(out, WorkoutRunDTO{ID: r.ID, Day: r.Day, Notes: r.Notes, PerformedAt: r.PerformedAt})
	}
	return out, nil
}

// ValidateToken validates a JWT token and returns its claims
func (s *UserService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSessionError, "Invalid or expired session")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New(errors.CodeSessionError, "Invalid or expired session")
	}
	return claims, nil
}

func (s *UserService) generateToken(userEntity *user.User) (string, int, error) {
	now := time.Now()
	expiresIn := 24 * time.Hour

	claims := &JWTClaims{
		UserID: userEntity.ID(),
		Email:  userEntity.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userEntity.ID().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int(expiresIn.Seconds()), nil
}

func (s *UserService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "user:"+userID.String()); err != nil {
		s.logger.Debug("Failed to invalidate user cache", zap.Error(err))
	}
}

func entityToDTO(userEntity *user.User) UserDTO {
	return UserDTO{
		ID:        userEntity.ID(),
		Email:     userEntity.Email(),
		Name:      userEntity.Name(),
		IsActive:  userEntity.IsActive(),
		Profile:   profileToDTO(userEntity.Profile()),
		CreatedAt: userEntity.CreatedAt(),
	}
}

func profileToDTO(p *user.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		BirthDate:     p.BirthDate.Format("2006-01-02"),
		Sex:           string(p.Sex),
		ActivityLevel: string(p.ActivityLevel),
		Goal:          string(p.Goal),
		Allergies:     p.Allergies,
	}
}
