package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"broadcast-service/internal/models"
	"broadcast-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Save(ctx context.Context, msg *models.BroadcastMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ActiveMessageFor(ctx context.Context, ownerID int) (models.BroadcastMessage, error) {
	args := m.Called(ctx, ownerID)
	var msg models.BroadcastMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.BroadcastMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, messageID int, ownerID int) error {
	args := m.Called(ctx, messageID, ownerID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int, ownerID int) (models.BroadcastMessage, error) {
	args := m.Called(ctx, messageID, ownerID)
	var msg models.BroadcastMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.BroadcastMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListForUser(ctx context.Context, ownerID int) ([]models.BroadcastMessage, error) {
	args := m.Called(ctx, ownerID)
	var msgs []models.BroadcastMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.BroadcastMessage)
	}
	return msgs, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) DeleteUser(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, profile *models.Profile, username string) error {
	args := m.Called(ctx, profile, username)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) GetByUserID(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetBySlug(ctx context.Context, slug string) (models.Profile, error) {
	args := m.Called(ctx, slug)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

type QRCodeRepositoryMock struct {
	mock.Mock
}

func (m *QRCodeRepositoryMock) Create(ctx context.Context, userID int, image []byte) error {
	args := m.Called(ctx, userID, image)
	return args.Error(0)
}

func (m *QRCodeRepositoryMock) GetByUserID(ctx context.Context, userID int) (models.QRCode, error) {
	args := m.Called(ctx, userID)
	var code models.QRCode
	if val := args.Get(0); val != nil {
		code = val.(models.QRCode)
	}
	return code, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.QRCodeRepository = (*QRCodeRepositoryMock)(nil)
