package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"clinical-scheduling/config"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/delivery/http/middleware"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/infrastructure/database/dbtest"
	"clinical-scheduling/internal/repository"
	"clinical-scheduling/internal/service"
	"clinical-scheduling/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifications struct {
	mu      sync.Mutex
	created []entity.Appointment
}

func (n *recordingNotifications) AppointmentCreated(appointment entity.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, appointment)
}

func (n *recordingNotifications) Close() {}

type fixture struct {
	db            *gorm.DB
	professionals ProfessionalUsecase
	appointments  AppointmentUsecase
	auth          AuthUsecase
	auditLogs     AuditLogUsecase
	notifications *recordingNotifications
	tokens        *repository.MemoryStore
	jwt           *jwt.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db := dbtest.Open(t)
	tokens := repository.NewMemoryStore(log)
	t.Cleanup(tokens.Stop)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
	audit := service.NewAuditService(log, repository.NewAuditLogRepository())
	notifications := &recordingNotifications{}

	professionalRepo := repository.NewProfessionalRepository()
	appointmentRepo := repository.NewAppointmentRepository()

	return &fixture{
		db:            db,
		professionals: NewProfessionalUsecase(db, log, professionalRepo, appointmentRepo, audit),
		appointments:  NewAppointmentUsecase(db, log, appointmentRepo, professionalRepo, audit, notifications),
		auth:          NewAuthUsecase(db, log, repository.NewUserRepository(), tokens, audit, jwtService),
		auditLogs:     NewAuditLogUsecase(db, log, repository.NewAuditLogRepository()),
		notifications: notifications,
		tokens:        tokens,
		jwt:           jwtService,
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) createProfessional(t *testing.T, name string) *dto.ProfessionalResponse {
	t.Helper()
	res, err := f.professionals.CreateProfessional(context.Background(), &dto.CreateProfessionalRequest{
		SocialName: ptr(name),
		Profession: ptr("Psychologist"),
		Contact:    ptr("joanesilva@email.com"),
	})
	require.NoError(t, err)
	return res
}

func TestProfessionalLifecycleWritesAuditTrail(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.CreateUser(context.Background(), &dto.CreateUserRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	ctx := middleware.WithUser(context.Background(), user.ID, user.Username)

	created, err := f.professionals.CreateProfessional(ctx, &dto.CreateProfessionalRequest{
		SocialName: ptr("Dr. Joane Silva"),
		Profession: ptr("Psychologist"),
		Address:    ptr("Rua das Flores, 123"),
		Contact:    ptr("(11) 98888-7777"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := f.professionals.UpdateProfessional(ctx, created.ID, &dto.UpdateProfessionalRequest{Profession: ptr("Nutritionist")})
	require.NoError(t, err)
	assert.Equal(t, "Nutritionist", updated.Profession)
	assert.Equal(t, "Dr. Joane Silva", updated.SocialName)

	require.NoError(t, f.professionals.DeleteProfessional(ctx, created.ID))

	_, err = f.professionals.GetProfessional(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProfessionalNotFound)

	page, err := f.auditLogs.ListAuditTrail(ctx, entity.AuditLogFilter{})
	require.NoError(t, err)
	assert.Nil(t, page.NextBefore)

	var actions []string
	for _, l := range page.Results {
		if l.Action == entity.AuditActionUserCreate {
			assert.Nil(t, l.Actor)
			continue
		}
		actions = append(actions, l.Action)
		require.NotNil(t, l.Actor)
		assert.Equal(t, user.ID, l.Actor.ID)
	}
	assert.ElementsMatch(t, []string{
		entity.AuditActionProfessionalCreate,
		entity.AuditActionProfessionalUpdate,
		entity.AuditActionProfessionalDelete,
	}, actions)
}

func TestRecordHistoryOutlivesTheRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createProfessional(t, "Dr. Kept")
	_, err := f.professionals.UpdateProfessional(ctx, created.ID, &dto.UpdateProfessionalRequest{SocialName: ptr("Dr. Renamed")})
	require.NoError(t, err)
	require.NoError(t, f.professionals.DeleteProfessional(ctx, created.ID))

	history, err := f.auditLogs.GetRecordHistory(ctx, entity.AuditEntityProfessional, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.AuditActionProfessionalCreate, history[0].Action)
	assert.Equal(t, entity.AuditActionProfessionalDelete, history[2].Action)

	require.NotNil(t, history[0].Changes)
	assert.Nil(t, history[0].Changes.Before)
	require.NotNil(t, history[1].Changes)
	assert.Equal(t, "Dr. Kept", history[1].Changes.Before.(map[string]interface{})["social_name"])
	assert.Equal(t, "Dr. Renamed", history[1].Changes.After.(map[string]interface{})["social_name"])
	assert.Nil(t, history[2].Changes.After)

	_, err = f.auditLogs.GetRecordHistory(ctx, entity.AuditEntityProfessional, created.ID+100)
	assert.ErrorIs(t, err, ErrNoHistory)
	_, err = f.auditLogs.GetRecordHistory(ctx, entity.AuditEntityAppointment, created.ID)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestListAuditTrailPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Dr. A", "Dr. B", "Dr. C"} {
		f.createProfessional(t, name)
	}

	filter := entity.AuditLogFilter{EntityType: entity.AuditEntityProfessional, Limit: 2}
	first, err := f.auditLogs.ListAuditTrail(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first.Results, 2)
	require.NotNil(t, first.NextBefore)
	assert.Equal(t, first.Results[1].ID, *first.NextBefore)

	filter.Before = *first.NextBefore
	second, err := f.auditLogs.ListAuditTrail(ctx, filter)
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Nil(t, second.NextBefore)
	assert.Equal(t, "Dr. A", second.Results[0].Changes.After.(map[string]interface{})["social_name"])
}

func TestProfessionalNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.professionals.UpdateProfessional(ctx, 42, &dto.UpdateProfessionalRequest{})
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
	assert.ErrorIs(t, f.professionals.DeleteProfessional(ctx, 42), ErrProfessionalNotFound)
}

func TestDeleteProfessionalWithAppointmentsIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProfessional(t, "Dr. Busy")

	_, err := f.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		Date:         ptr(time.Now().Add(48 * time.Hour)),
		Professional: ptr(p.ID),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.professionals.DeleteProfessional(ctx, p.ID), ErrProfessionalInUse)

	still, err := f.professionals.GetProfessional(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, still.ID)
}

func TestCreateAppointmentNotifiesAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProfessional(t, "Dr. Joane Silva")

	when := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	res, err := f.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		Date:         ptr(when),
		Professional: ptr(p.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, res.Professional)
	require.NotNil(t, res.ProfessionalDetail)
	assert.Equal(t, "Dr. Joane Silva", res.ProfessionalDetail.SocialName)
	assert.True(t, res.Date.Equal(when))

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, res.ID, f.notifications.created[0].ID)
	assert.Equal(t, "Dr. Joane Silva", f.notifications.created[0].Professional.SocialName)
}

func TestCreateAppointmentUnknownProfessional(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.CreateAppointment(context.Background(), &dto.CreateAppointmentRequest{
		Date:         ptr(time.Now().Add(time.Hour)),
		Professional: ptr(uint(9999)),
	})
	assert.ErrorIs(t, err, ErrUnknownProfessional)
	assert.Empty(t, f.notifications.created)

	all, err := f.appointments.GetAllAppointments(context.Background(), entity.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, f.appointments.CheckProfessional(context.Background(), 9999), ErrUnknownProfessional)
	known := f.createProfessional(t, "Dr. Known")
	assert.NoError(t, f.appointments.CheckProfessional(context.Background(), known.ID))
}

func TestAppointmentFilterUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createProfessional(t, "Dr. First")
	second := f.createProfessional(t, "Dr. Second")

	a1, err := f.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{Date: ptr(time.Now().Add(time.Hour)), Professional: ptr(first.ID)})
	require.NoError(t, err)
	_, err = f.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{Date: ptr(time.Now().Add(2 * time.Hour)), Professional: ptr(second.ID)})
	require.NoError(t, err)

	onlyFirst, err := f.appointments.GetAllAppointments(ctx, entity.AppointmentFilter{ProfessionalID: ptr(first.ID)})
	require.NoError(t, err)
	require.Len(t, onlyFirst, 1)
	assert.Equal(t, a1.ID, onlyFirst[0].ID)

	moved, err := f.appointments.UpdateAppointment(ctx, a1.ID, &dto.UpdateAppointmentRequest{Professional: ptr(second.ID)})
	require.NoError(t, err)
	assert.Equal(t, second.ID, moved.Professional)
	assert.Equal(t, "Dr. Second", moved.ProfessionalDetail.SocialName)

	_, err = f.appointments.UpdateAppointment(ctx, a1.ID, &dto.UpdateAppointmentRequest{Professional: ptr(uint(9999))})
	assert.ErrorIs(t, err, ErrUnknownProfessional)

	require.NoError(t, f.appointments.DeleteAppointment(ctx, a1.ID))
	assert.ErrorIs(t, f.appointments.DeleteAppointment(ctx, a1.ID), ErrAppointmentNotFound)

	_, err = f.appointments.GetAppointment(ctx, a1.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTokenObtainRefreshAndBlacklist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.CreateUser(ctx, &dto.CreateUserRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = f.auth.CreateUser(ctx, &dto.CreateUserRequest{Username: "alice", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	pair, err := f.auth.ObtainToken(ctx, &dto.TokenObtainRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateTokenOfType(pair.Access, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	refreshed, err := f.auth.RefreshToken(ctx, &dto.TokenRefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Access)
	assert.Equal(t, int64(60), refreshed.ExpiresIn)

	_, err = f.auth.RefreshToken(ctx, &dto.TokenRefreshRequest{Refresh: pair.Access})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.auth.BlacklistToken(ctx, &dto.TokenRefreshRequest{Refresh: pair.Refresh}))

	_, err = f.auth.RefreshToken(ctx, &dto.TokenRefreshRequest{Refresh: pair.Refresh})
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.ErrorIs(t, f.auth.BlacklistToken(ctx, &dto.TokenRefreshRequest{Refresh: pair.Refresh}), ErrTokenRevoked)

	logins, err := f.auditLogs.ListAuditTrail(ctx, entity.AuditLogFilter{Action: entity.AuditActionUserLogin})
	require.NoError(t, err)
	require.Len(t, logins.Results, 1)
	require.NotNil(t, logins.Results[0].Actor)
	assert.Equal(t, "alice", logins.Results[0].Actor.Username)
	assert.Nil(t, logins.Results[0].Changes)

	found, err := f.auditLogs.GetAuditEntry(ctx, logins.Results[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionUserLogin, found.Action)
	assert.Equal(t, entity.AuditEntityUser, found.Record.Type)

	_, err = f.auditLogs.GetAuditEntry(ctx, 999999)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}

func TestObtainTokenRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.CreateUser(ctx, &dto.CreateUserRequest{Username: "bob", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = f.auth.ObtainToken(ctx, &dto.TokenObtainRequest{Username: "bob", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.ObtainToken(ctx, &dto.TokenObtainRequest{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.db.Model(&entity.User{}).Where("username = ?", "bob").Update("is_active", false).Error)
	_, err = f.auth.ObtainToken(ctx, &dto.TokenObtainRequest{Username: "bob", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Zero(t, f.tokens.Len())
}
