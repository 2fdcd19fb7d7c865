package store

import (
	"context"
	"errors"
	"fmt"

	"forum-indexer/feature/forum/models"

	"gorm.io/gorm"
)

// Store is the entity store: keyed load/upsert/remove of derived entities
// over GORM. Loads return (nil, nil) when the record is absent; call sites
// decide between lazy materialization and a recorded no-op.
type Store struct {
	db *gorm.DB
}

// New creates a store over an established database connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the schema for the full model set.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.Tag{},
		&models.Post{},
		&models.Reply{},
		&models.Comment{},
		&models.Translation{},
		&models.CommunityDocumentation{},
		&models.UserCommunityRating{},
		&models.UserCommunityBan{},
		&models.CommunityToken{},
		&models.Achievement{},
		&models.HistoryEntry{},
	)
}

// load fetches a record by primary key into dst, mapping gorm's not-found
// error to a nil result.
func (s *Store) load(ctx context.Context, dst any, id string) (bool, error) {
	err := s.db.WithContext(ctx).First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load record %q: %w", id, err)
	}
	return true, nil
}

func (s *Store) upsert(ctx context.Context, record any) error {
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	ok, err := s.load(ctx, &u, id)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.upsert(ctx, u)
}

func (s *Store) Community(ctx context.Context, id string) (*models.Community, error) {
	var c models.Community
	ok, err := s.load(ctx, &c, id)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SaveCommunity(ctx context.Context, c *models.Community) error {
	return s.upsert(ctx, c)
}

func (s *Store) Tag(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	ok, err := s.load(ctx, &t, id)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SaveTag(ctx context.Context, t *models.Tag) error {
	return s.upsert(ctx, t)
}

func (s *Store) Post(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	ok, err := s.load(ctx, &p, id)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SavePost(ctx context.Context, p *models.Post) error {
	return s.upsert(ctx, p)
}

// RemovePost hard-deletes a post record. Used only for documentation posts,
// whose lifecycle is owned by the documentation tree; forum posts are
// soft-deleted.
func (s *Store) RemovePost(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to remove post %q: %w", id, err)
	}
	return nil
}

func (s *Store) Reply(ctx context.Context, id string) (*models.Reply, error) {
	var r models.Reply
	ok, err := s.load(ctx, &r, id)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveReply(ctx context.Context, r *models.Reply) error {
	return s.upsert(ctx, r)
}

func (s *Store) Comment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	ok, err := s.load(ctx, &c, id)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SaveComment(ctx context.Context, c *models.Comment) error {
	return s.upsert(ctx, c)
}

func (s *Store) Translation(ctx context.Context, id string) (*models.Translation, error) {
	var t models.Translation
	ok, err := s.load(ctx, &t, id)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SaveTranslation(ctx context.Context, t *models.Translation) error {
	return s.upsert(ctx, t)
}

func (s *Store) RemoveTranslation(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Translation{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to remove translation %q: %w", id, err)
	}
	return nil
}

func (s *Store) Documentation(ctx context.Context, communityID string) (*models.CommunityDocumentation, error) {
	var d models.CommunityDocumentation
	ok, err := s.load(ctx, &d, communityID)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (s *Store) SaveDocumentation(ctx context.Context, d *models.CommunityDocumentation) error {
	return s.upsert(ctx, d)
}

func (s *Store) Rating(ctx context.Context, id string) (*models.UserCommunityRating, error) {
	var r models.UserCommunityRating
	ok, err := s.load(ctx, &r, id)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveRating(ctx context.Context, r *models.UserCommunityRating) error {
	return s.upsert(ctx, r)
}

func (s *Store) Ban(ctx context.Context, id string) (*models.UserCommunityBan, error) {
	var b models.UserCommunityBan
	ok, err := s.load(ctx, &b, id)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (s *Store) SaveBan(ctx context.Context, b *models.UserCommunityBan) error {
	return s.upsert(ctx, b)
}

func (s *Store) RemoveBan(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.UserCommunityBan{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to remove ban %q: %w", id, err)
	}
	return nil
}

func (s *Store) Token(ctx context.Context, id string) (*models.CommunityToken, error) {
	var t models.CommunityToken
	ok, err := s.load(ctx, &t, id)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SaveToken(ctx context.Context, t *models.CommunityToken) error {
	return s.upsert(ctx, t)
}

func (s *Store) Achievement(ctx context.Context, id string) (*models.Achievement, error) {
	var a models.Achievement
	ok, err := s.load(ctx, &a, id)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAchievement(ctx context.Context, a *models.Achievement) error {
	return s.upsert(ctx, a)
}

func (s *Store) SaveHistory(ctx context.Context, h *models.HistoryEntry) error {
	return s.upsert(ctx, h)
}
