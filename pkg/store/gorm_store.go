package store

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studyguide/pkg/domain"
)

// GormStore implements Store using GORM. The backend is chosen by DSN:
// postgres:// (or postgresql://) selects the Postgres driver, anything else
// is treated as a SQLite file path.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and runs migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database dsn required")
	}
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&ReviewModel{}, &SharedSummaryModel{}, &ContactSubmissionModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	s := &GormStore{db: db}
	s.ensureColumn(&ReviewModel{}, "is_approved")
	s.ensureColumn(&ContactSubmissionModel{}, "issue_resolved")
	return s, nil
}

// ensureColumn adds a column that predates AutoMigrate coverage. Failures are
// logged and swallowed so a migration hiccup never takes the service down.
func (s *GormStore) ensureColumn(model any, column string) {
	migrator := s.db.Migrator()
	if migrator.HasColumn(model, column) {
		return
	}
	slog.Info("migrating table: adding column", "column", column)
	if err := migrator.AddColumn(model, column); err != nil {
		slog.Warn("migration failed", "column", column, "err", err)
	}
}

// CreateReview inserts a review. The approval flag is forced off regardless
// of what the caller set; only the operator tool flips it.
func (s *GormStore) CreateReview(review domain.Review) (int64, error) {
	model := ReviewModel{
		Name:      review.Name,
		Role:      review.Role,
		Content:   review.Content,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if err := s.db.Create(&model).Error; err != nil {
		return 0, fmt.Errorf("create review: %w", err)
	}
	return model.ID, nil
}

// ListReviews returns reviews filtered by approval flag, newest first.
func (s *GormStore) ListReviews(approved bool) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Where("is_approved = ?", approved).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviews := make([]domain.Review, 0, len(models))
	for _, m := range models {
		reviews = append(reviews, reviewFromModel(m))
	}
	return reviews, nil
}

// SetReviewApproval flips the approval flag. Returns false when no row matched.
func (s *GormStore) SetReviewApproval(id int64, approved bool) (bool, error) {
	res := s.db.Model(&ReviewModel{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return false, fmt.Errorf("update review approval: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteReview removes a review permanently.
func (s *GormStore) DeleteReview(id int64) (bool, error) {
	res := s.db.Delete(&ReviewModel{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete review: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SaveSummary stores a shared summary under the given token.
func (s *GormStore) SaveSummary(id, content string) error {
	model := SharedSummaryModel{
		ID:        id,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

// GetSummary looks up a shared summary by token.
func (s *GormStore) GetSummary(id string) (domain.SharedSummary, bool, error) {
	var model SharedSummaryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SharedSummary{}, false, nil
		}
		return domain.SharedSummary{}, false, fmt.Errorf("get summary: %w", err)
	}
	return domain.SharedSummary{ID: model.ID, Content: model.Content, CreatedAt: model.CreatedAt}, true, nil
}

// CreateContact inserts a contact submission.
func (s *GormStore) CreateContact(submission domain.ContactSubmission) error {
	model := ContactSubmissionModel{
		ID:            submission.ID,
		Name:          submission.Name,
		Email:         submission.Email,
		Subject:       submission.Subject,
		Description:   submission.Description,
		Timestamp:     submission.Timestamp,
		IssueResolved: submission.IssueResolved,
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = time.Now().UTC()
	}
	if err := s.db.Create(&model).Error; err != nil {
		return fmt.Errorf("create contact submission: %w", err)
	}
	return nil
}

// ListContacts returns submissions filtered by resolution state, newest first.
func (s *GormStore) ListContacts(resolved bool) ([]domain.ContactSubmission, error) {
	status := 0
	if resolved {
		status = 1
	}
	var models []ContactSubmissionModel
	if err := s.db.Where("issue_resolved = ?", status).Order("timestamp DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	submissions := make([]domain.ContactSubmission, 0, len(models))
	for _, m := range models {
		submissions = append(submissions, contactFromModel(m))
	}
	return submissions, nil
}

// ResolveContact marks a submission resolved. Returns false when no row matched.
func (s *GormStore) ResolveContact(id string) (bool, error) {
	res := s.db.Model(&ContactSubmissionModel{}).Where("id = ?", id).Update("issue_resolved", 1)
	if res.Error != nil {
		return false, fmt.Errorf("resolve contact submission: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteContact removes a submission permanently.
func (s *GormStore) DeleteContact(id string) (bool, error) {
	res := s.db.Delete(&ContactSubmissionModel{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete contact submission: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func reviewFromModel(m ReviewModel) domain.Review {
	return domain.Review{
		ID:         m.ID,
		Name:       m.Name,
		Role:       m.Role,
		Content:    m.Content,
		Rating:     m.Rating,
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt,
	}
}

func contactFromModel(m ContactSubmissionModel) domain.ContactSubmission {
	return domain.ContactSubmission{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Subject:       m.Subject,
		Description:   m.Description,
		Timestamp:     m.Timestamp,
		IssueResolved: m.IssueResolved,
	}
}
