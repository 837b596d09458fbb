package service

import (
	"context"
	"errors"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// ProfileService 负责用户资料查询和关注关系的管理。
type ProfileService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewProfileService 创建 ProfileService 实例。
func NewProfileService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *ProfileService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for ProfileService")
	}
	if followRepo == nil {
		panic("FollowRepository cannot be nil for ProfileService")
	}
	return &ProfileService{userRepo: userRepo, followRepo: followRepo}
}

// Get 返回用户资料，Following 相对于查看者计算 (匿名恒为 false)。
func (s *ProfileService) Get(ctx context.Context, username string, viewer domain.Viewer) (domain.Profile, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	following := false
	if !viewer.IsAnonymous() {
		following, err = s.followRepo.Exists(ctx, viewer.Username(), username)
		if err != nil {
			logrus.WithError(err).Error("Get profile: follow check failed")
			return domain.Profile{}, ErrStoreUnavailable
		}
	}
	return domain.ProfileOf(user, following), nil
}

// Follow 创建一条关注边。自己关注自己被禁止；重复关注以冲突失败。
func (s *ProfileService) Follow(ctx context.Context, follower *domain.User, username string) (domain.Profile, error) {
	logCtx := logrus.WithFields(logrus.Fields{"follower": follower.Username, "followed": username})

	// 1. 被关注者必须存在
	followed, err := s.findUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	// 2. 禁止自关注
	if follower.Username == followed.Username {
		logCtx.Warn("Follow rejected: self-follow attempt")
		return domain.Profile{}, ErrSelfFollow
	}

	// 3. 直接插入，唯一约束兜底并发下的重复关注
	follow := &domain.Follow{Follower: follower.Username, Followed: followed.Username}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Follow rejected: edge already exists")
			return domain.Profile{}, ErrAlreadyFollowing
		}
		logCtx.WithError(err).Error("Follow: repository error")
		return domain.Profile{}, ErrStoreUnavailable
	}

	logCtx.Info("Follow edge created")
	return domain.ProfileOf(followed, true), nil
}

// Unfollow 删除一条关注边。边不存在时以未找到失败。
func (s *ProfileService) Unfollow(ctx context.Context, follower *domain.User, username string) (domain.Profile, error) {
	logCtx := logrus.WithFields(logrus.Fields{"follower": follower.Username, "followed": username})

	followed, err := s.findUser(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	if err := s.followRepo.Delete(ctx, follower.Username, followed.Username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logCtx.Warn("Unfollow rejected: edge does not exist")
			return domain.Profile{}, ErrNotFollowing
		}
		logCtx.WithError(err).Error("Unfollow: repository error")
		return domain.Profile{}, ErrStoreUnavailable
	}

	logCtx.Info("Follow edge removed")
	return domain.ProfileOf(followed, false), nil
}

func (s *ProfileService) findUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("username", username).Error("Find user: repository error")
		return nil, ErrStoreUnavailable
	}
	return user, nil
}
