package service_test

import (
	"context"
	"errors"
	"testing"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
	"conduit-backend/internal/repository/mocks"
	"conduit-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- 测试 Get 方法 ---

func TestProfileService_Get_AnonymousViewer(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice", Bio: "hi", Image: "img.png"}, nil).Once()

	// Act
	profile, err := profileService.Get(ctx, "alice", domain.Anonymous())

	// Assert: 匿名查看者的关注标记恒为 false，且不触发关注查询
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "hi", profile.Bio)
	assert.False(t, profile.Following)
	mockFollowRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_Get_IdentifiedViewer(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()
	viewer := domain.Identified(&domain.User{ID: 9, Username: "carol"})

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
	mockFollowRepo.On("Exists", ctx, "carol", "alice").Return(true, nil).Once()

	// Act
	profile, err := profileService.Get(ctx, "alice", viewer)

	// Assert
	require.NoError(t, err)
	assert.True(t, profile.Following)
	mockFollowRepo.AssertExpectations(t)
}

func TestProfileService_Get_UserNotFound(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "ghost").
		Return(nil, repository.ErrUserNotFound).Once()

	// Act
	_, err := profileService.Get(ctx, "ghost", domain.Anonymous())

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUserNotFound))
}

// --- 测试 Follow 方法 ---

func TestProfileService_Follow_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()
	follower := &domain.User{ID: 9, Username: "carol"}

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
	mockFollowRepo.On("Create", ctx, mock.MatchedBy(func(f *domain.Follow) bool {
		return f.Follower == "carol" && f.Followed == "alice"
	})).Return(nil).Once()

	// Act
	profile, err := profileService.Follow(ctx, follower, "alice")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.Following)
	mockFollowRepo.AssertExpectations(t)
}

func TestProfileService_Follow_Self(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()
	follower := &domain.User{ID: 9, Username: "carol"}

	mockUserRepo.On("FindByUsername", ctx, "carol").Return(follower, nil).Once()

	// Act
	_, err := profileService.Follow(ctx, follower, "carol")

	// Assert: 自关注被禁止
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrSelfFollow))
	mockFollowRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileService_Follow_AlreadyFollowing(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
	mockFollowRepo.On("Create", ctx, mock.AnythingOfType("*domain.Follow")).
		Return(repository.ErrDuplicateEntry).Once()

	// Act
	_, err := profileService.Follow(ctx, &domain.User{Username: "carol"}, "alice")

	// Assert: 重复关注以冲突失败
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyFollowing))
}

// --- 测试 Unfollow 方法 ---

func TestProfileService_Unfollow_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
	mockFollowRepo.On("Delete", ctx, "carol", "alice").Return(nil).Once()

	// Act
	profile, err := profileService.Unfollow(ctx, &domain.User{Username: "carol"}, "alice")

	// Assert
	require.NoError(t, err)
	assert.False(t, profile.Following)
	mockFollowRepo.AssertExpectations(t)
}

func TestProfileService_Unfollow_NotFollowing(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	mockFollowRepo := new(mocks.FollowRepository)
	profileService := service.NewProfileService(mockUserRepo, mockFollowRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil).Once()
	mockFollowRepo.On("Delete", ctx, "carol", "alice").
		Return(repository.ErrNotFound).Once()

	// Act
	_, err := profileService.Unfollow(ctx, &domain.User{Username: "carol"}, "alice")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotFollowing))
}
