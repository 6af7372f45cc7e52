package safety_test

import (
	"errors"
	"testing"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"
	"ridechat/backend/internal/safety"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UpdateUserReputation(userID string, delta int) error {
	args := m.Called(userID, delta)
	return args.Error(0)
}

func (m *MockStorage) SaveRoom(room *models.RideRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) CloseRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.RideRoom, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RideRoom), args.Error(1)
}

func (m *MockStorage) GetActiveRoomIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) AddParticipant(roomID, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *MockStorage) RemoveParticipant(roomID, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatHistory(roomID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) PublishEvent(roomID string, ev models.Event) error {
	args := m.Called(roomID, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeToAllRooms() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

func (m *MockStorage) SaveReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockStorage) GetReportsForUser(userID string, since time.Time) ([]models.Report, error) {
	args := m.Called(userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) BanUser(userID string, duration time.Duration) error {
	args := m.Called(userID, duration)
	return args.Error(0)
}

func (m *MockStorage) UnbanUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) IsUserBanned(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) NextBanLevel(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func newReport(severity string) *models.Report {
	return &models.Report{
		ReportID:       "rep_1",
		ReporterID:     "user_A",
		ReportedUserID: "user_B",
		RoomID:         "ride_1",
		Reason:         "harassment in chat",
		Severity:       severity,
		Status:         "open",
		CreatedAt:      time.Now(),
	}
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 5, safety.SeverityWeight("Low"))
	assert.Equal(t, 50, safety.SeverityWeight("Medium"))
	assert.Equal(t, 250, safety.SeverityWeight("Critical"))
	assert.Equal(t, 0, safety.SeverityWeight("Bogus"))
}

func TestHandleReport_AppliesPenalty(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := safety.NewService(mockStorage, nil)

	report := newReport("Medium")
	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -50).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 900}, nil).Once()
	mockStorage.On("GetReportsForUser", "user_B", mock.AnythingOfType("time.Time")).
		Return([]models.Report{*report}, nil).Once()

	require.NoError(t, svc.HandleReport(report))
	mockStorage.AssertExpectations(t)
	mockStorage.AssertNotCalled(t, "BanUser", mock.Anything, mock.Anything)
}

func TestHandleReport_BansWhenReputationBelowThreshold(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := safety.NewService(mockStorage, nil)

	report := newReport("Critical")
	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -250).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 300}, nil).Once()
	mockStorage.On("NextBanLevel", "user_B").Return(1, nil).Once()
	mockStorage.On("BanUser", "user_B", config.BanLevel1Duration).Return(nil).Once()

	require.NoError(t, svc.HandleReport(report))
	mockStorage.AssertExpectations(t)
}

func TestHandleReport_BansWhenReportFrequencyExceeded(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := safety.NewService(mockStorage, nil)

	report := newReport("Low")
	recent := make([]models.Report, config.BanThresholdFrequency+1)
	for i := range recent {
		recent[i] = *newReport("Low")
	}

	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -5).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 990}, nil).Once()
	mockStorage.On("GetReportsForUser", "user_B", mock.AnythingOfType("time.Time")).
		Return(recent, nil).Once()
	mockStorage.On("NextBanLevel", "user_B").Return(2, nil).Once()
	mockStorage.On("BanUser", "user_B", config.BanLevel2Duration).Return(nil).Once()

	require.NoError(t, svc.HandleReport(report))
	mockStorage.AssertExpectations(t)
}

func TestHandleReport_RepeatOffenderGetsLongerBan(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := safety.NewService(mockStorage, nil)

	report := newReport("Critical")
	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -250).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 100}, nil).Once()
	mockStorage.On("NextBanLevel", "user_B").Return(3, nil).Once()
	mockStorage.On("BanUser", "user_B", config.BanLevel3Duration).Return(nil).Once()

	require.NoError(t, svc.HandleReport(report))
	mockStorage.AssertExpectations(t)
}

func TestHandleReport_NotifiesOps(t *testing.T) {
	mockStorage := new(MockStorage)
	notifier := new(mockNotifier)
	svc := safety.NewService(mockStorage, notifier)

	report := newReport("Low")
	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -5).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 995}, nil).Once()
	mockStorage.On("GetReportsForUser", "user_B", mock.AnythingOfType("time.Time")).
		Return([]models.Report{}, nil).Once()
	notifier.On("NotifyReport", report).Return(nil).Once()

	require.NoError(t, svc.HandleReport(report))
	notifier.AssertExpectations(t)
}

func TestHandleReport_NotifierFailureIsNotFatal(t *testing.T) {
	mockStorage := new(MockStorage)
	notifier := new(mockNotifier)
	svc := safety.NewService(mockStorage, notifier)

	report := newReport("Low")
	mockStorage.On("SaveReport", report).Return(nil).Once()
	mockStorage.On("UpdateUserReputation", "user_B", -5).Return(nil).Once()
	mockStorage.On("GetUserByID", "user_B").
		Return(&models.User{ID: "user_B", ReputationScore: 995}, nil).Once()
	mockStorage.On("GetReportsForUser", "user_B", mock.AnythingOfType("time.Time")).
		Return([]models.Report{}, nil).Once()
	notifier.On("NotifyReport", report).Return(errors.New("telegram unreachable")).Once()

	assert.NoError(t, svc.HandleReport(report))
}

func TestHandleReport_SaveFailureStopsPipeline(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := safety.NewService(mockStorage, nil)

	report := newReport("Low")
	mockStorage.On("SaveReport", report).Return(errors.New("db down")).Once()

	assert.Error(t, svc.HandleReport(report))
	mockStorage.AssertNotCalled(t, "UpdateUserReputation", mock.Anything, mock.Anything)
}
