package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"myblog/internal/domain"
	"myblog/internal/repository"
	"myblog/internal/storage"
)

const DefaultPageSize = 5

// ErrArchiveDisabled is returned by ListArchived when no archive is configured.
var ErrArchiveDisabled = errors.New("archive is not configured")

// EntryArchiver keeps snapshots of deleted entries.
type EntryArchiver interface {
	Store(ctx context.Context, snapshot storage.EntrySnapshot) (string, error)
	List(ctx context.Context, ownerID int64) ([]storage.ObjectInfo, error)
}

// BlogService describes blog entry operations.
type BlogService interface {
	Create(ctx context.Context, actor *domain.User, title, article string) (*domain.BlogEntry, error)
	Get(ctx context.Context, id int64) (*domain.BlogEntry, error)
	Edit(ctx context.Context, id int64, actor *domain.User, title, article string) (*domain.BlogEntry, error)
	RequestDelete(ctx context.Context, id int64, actor *domain.User) (*domain.PendingDelete, error)
	ConfirmDelete(ctx context.Context, id int64, actor *domain.User) error
	ListPage(ctx context.Context, page, pageSize int) (*domain.Page, error)
	ListArchived(ctx context.Context, actor *domain.User) ([]storage.ObjectInfo, error)
}

type BlogOptions struct {
	PageSize int
	Retry    RetryPolicy
	// Archive is optional.
	Archive EntryArchiver
	Logger  logrus.FieldLogger
}

type blogService struct {
	blogs    repository.BlogRepository
	comments repository.CommentRepository
	guard    *Guard
	pageSize int
	retry    RetryPolicy
	archive  EntryArchiver
	logger   logrus.FieldLogger
}

func NewBlogService(blogs repository.BlogRepository, comments repository.CommentRepository, guard *Guard, opts BlogOptions) BlogService {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &blogService{
		blogs:    blogs,
		comments: comments,
		guard:    guard,
		pageSize: pageSize,
		retry:    opts.Retry.normalize(),
		archive:  opts.Archive,
		logger:   logger,
	}
}

func validateEntry(title, article string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &domain.FieldError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(article) == "" {
		return "", &domain.FieldError{Field: "article", Reason: "is required"}
	}
	return title, nil
}

func (s *blogService) Create(ctx context.Context, actor *domain.User, title, article string) (*domain.BlogEntry, error) {
	if err := s.guard.RequireUser(actor); err != nil {
		return nil, err
	}
	title, err := validateEntry(title, article)
	if err != nil {
		return nil, err
	}

	entry := &domain.BlogEntry{
		Title:         title,
		Article:       article,
		OwnerID:       actor.ID,
		OwnerUsername: actor.Username,
	}
	if _, err := withRetry(ctx, s.retry, func() (int64, error) {
		return s.blogs.Create(ctx, entry)
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *blogService) Get(ctx context.Context, id int64) (*domain.BlogEntry, error) {
	return withRetry(ctx, s.retry, func() (*domain.BlogEntry, error) {
		return s.blogs.Get(ctx, id)
	})
}

func (s *blogService) Edit(ctx context.Context, id int64, actor *domain.User, title, article string) (*domain.BlogEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwner(entry.OwnerID, actor); err != nil {
		return nil, err
	}
	title, err = validateEntry(title, article)
	if err != nil {
		return nil, err
	}

	updated := *entry
	updated.Title = title
	updated.Article = article
	if err := doWithRetry(ctx, s.retry, func() error {
		return s.blogs.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *blogService) RequestDelete(ctx context.Context, id int64, actor *domain.User) (*domain.PendingDelete, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwner(entry.OwnerID, actor); err != nil {
		return nil, err
	}
	return &domain.PendingDelete{EntryID: entry.ID, Title: entry.Title}, nil
}

func (s *blogService) ConfirmDelete(ctx context.Context, id int64, actor *domain.User) error {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.RequireOwner(entry.OwnerID, actor); err != nil {
		return err
	}

	if s.archive != nil {
		s.archiveEntry(ctx, entry)
	}

	return doWithRetry(ctx, s.retry, func() error {
		return s.blogs.Delete(ctx, entry.ID)
	})
}

func (s *blogService) archiveEntry(ctx context.Context, entry *domain.BlogEntry) {
	log := s.logger.WithField("entry_id", entry.ID)
	comments, err := withRetry(ctx, s.retry, func() ([]domain.Comment, error) {
		return s.comments.ListByEntry(ctx, entry.ID)
	})
	if err != nil {
		log.WithError(err).Warn("archive: failed to load comments")
		return
	}
	location, err := s.archive.Store(ctx, storage.EntrySnapshot{
		Entry:     *entry,
		Comments:  comments,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		log.WithError(err).Warn("archive: failed to store snapshot")
		return
	}
	log.WithField("location", location).Info("entry archived")
}

func (s *blogService) ListPage(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	total, err := withRetry(ctx, s.retry, func() (int, error) {
		return s.blogs.Count(ctx)
	})
	if err != nil {
		return nil, err
	}

	result := &domain.Page{
		Entries:    []domain.BlogEntry{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pageCount(total, pageSize),
	}
	// past the last page; also keeps (page-1)*pageSize below total
	if page > result.TotalPages {
		return result, nil
	}

	entries, err := withRetry(ctx, s.retry, func() ([]domain.BlogEntry, error) {
		return s.blogs.List(ctx, pageSize, (page-1)*pageSize)
	})
	if err != nil {
		return nil, err
	}
	result.Entries = entries
	return result, nil
}

func pageCount(total, pageSize int) int {
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

func (s *blogService) ListArchived(ctx context.Context, actor *domain.User) ([]storage.ObjectInfo, error) {
	if err := s.guard.RequireUser(actor); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, actor.ID)
}
