package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

// revisionTarget is the entry a revision operation works on
type revisionTarget struct {
	options    *service.RevisionOptions
	entry      *service.Entry
	collection *service.Collection
}

// loadRevisionTarget parses the options, loads the entry and authorizes the action
func (s *entryService) loadRevisionTarget(
	ctx context.Context,
	user *service.ActingUser,
	action service.Action,
	requireRevisions bool,
	opts []service.Option[service.RevisionOptions],
) (*revisionTarget, error) {
	options := &service.RevisionOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	e, c, err := s.entryWithCollection(ctx, options.EntryID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Authorize(ctx, user, action, c, e); err != nil {
		return nil, err
	}
	if requireRevisions && !c.Revisions {
		return nil, fmt.Errorf("%w: %s", service.ErrRevisionsDisabled, c.Handle)
	}
	return &revisionTarget{options: options, entry: e, collection: c}, nil
}

// ListRevisions returns the revisions of an entry, newest first
func (s *entryService) ListRevisions(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.RevisionOptions],
) (revisions []*service.Revision, err error) {
	ctx, span := s.startSpan(ctx, "entryService.ListRevisions")
	defer span.End()
	start := time.Now()

	target, err := s.loadRevisionTarget(ctx, user, service.ActionView, true, opts)
	if err != nil {
		otel.RecordError(span, err)
		s.observe(ctx, "revisions", "", start, err)
		return nil, err
	}
	defer func() { s.observe(ctx, "revisions", target.collection.Handle, start, err) }()
	userAttributes(span, user, target.collection)

	revisions, err = s.revisions.ListRevisions(ctx, target.entry.ID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(revisions)))
	return revisions, nil
}

// CreateRevision snapshots the working copy, or the entry itself when it
// has none
func (s *entryService) CreateRevision(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.RevisionOptions],
) (revision *service.Revision, err error) {
	ctx, span := s.startSpan(ctx, "entryService.CreateRevision")
	defer span.End()
	start := time.Now()

	target, err := s.loadRevisionTarget(ctx, user, service.ActionEdit, true, opts)
	if err != nil {
		otel.RecordError(span, err)
		s.observe(ctx, "create_revision", "", start, err)
		return nil, err
	}
	defer func() { s.observe(ctx, "create_revision", target.collection.Handle, start, err) }()
	userAttributes(span, user, target.collection)

	working, _, err := s.workingState(ctx, target.entry)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	revision = s.newRevision(working, service.RevisionActionRevision, target.options.Message, user)
	if err := s.revisions.CreateRevision(ctx, revision); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to record revision: %w", err)
	}
	return revision, nil
}

// PublishEntry applies the working copy to the live entry and publishes it
func (s *entryService) PublishEntry(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.RevisionOptions],
) (payload service.EntryPayload, err error) {
	ctx, span := s.startSpan(ctx, "entryService.PublishEntry")
	defer span.End()
	start := time.Now()

	target, err := s.loadRevisionTarget(ctx, user, service.ActionPublish, false, opts)
	if err != nil {
		otel.RecordError(span, err)
		s.observe(ctx, "publish", "", start, err)
		return nil, err
	}
	defer func() { s.observe(ctx, "publish", target.collection.Handle, start, err) }()
	c := target.collection
	userAttributes(span, user, c)

	working, hasWorkingCopy, err := s.workingState(ctx, target.entry)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, working); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	working.Published = true
	working.UpdatedBy = user.ID
	working.UpdatedAt = s.now()
	if err := s.entries.SaveEntry(ctx, working); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	if c.Revisions {
		revision := s.newRevision(working, service.RevisionActionPublish, target.options.Message, user)
		if err := s.revisions.CreateRevision(ctx, revision); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to record revision: %w", err)
		}
	}
	if hasWorkingCopy {
		if err := s.workingCopies.DeleteWorkingCopy(ctx, working.ID); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to delete working copy: %w", err)
		}
	}

	s.reindex(ctx, c, working)
	return working.ToPayload(), nil
}

// UnpublishEntry marks the live entry as unpublished. A pending working copy
// is kept so the edits can still be published later.
func (s *entryService) UnpublishEntry(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.RevisionOptions],
) (payload service.EntryPayload, err error) {
	ctx, span := s.startSpan(ctx, "entryService.UnpublishEntry")
	defer span.End()
	start := time.Now()

	target, err := s.loadRevisionTarget(ctx, user, service.ActionPublish, false, opts)
	if err != nil {
		otel.RecordError(span, err)
		s.observe(ctx, "unpublish", "", start, err)
		return nil, err
	}
	defer func() { s.observe(ctx, "unpublish", target.collection.Handle, start, err) }()
	c, e := target.collection, target.entry.Clone()
	userAttributes(span, user, c)

	if !e.Published {
		return e.ToPayload(), nil
	}

	e.Published = false
	e.UpdatedBy = user.ID
	e.UpdatedAt = s.now()
	if err := s.entries.SaveEntry(ctx, e); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	if c.Revisions {
		revision := s.newRevision(e, service.RevisionActionUnpublish, target.options.Message, user)
		if err := s.revisions.CreateRevision(ctx, revision); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to record revision: %w", err)
		}
	}

	s.reindex(ctx, c, e)
	return e.ToPayload(), nil
}

// RestoreRevision restores an entry to a previous revision. With revisions
// enabled the revision becomes the working copy, otherwise it is applied to
// the entry.
func (s *entryService) RestoreRevision(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.RevisionOptions],
) (payload service.EntryPayload, err error) {
	ctx, span := s.startSpan(ctx, "entryService.RestoreRevision")
	defer span.End()
	start := time.Now()

	target, err := s.loadRevisionTarget(ctx, user, service.ActionEdit, false, opts)
	if err != nil {
		otel.RecordError(span, err)
		s.observe(ctx, "restore", "", start, err)
		return nil, err
	}
	defer func() { s.observe(ctx, "restore", target.collection.Handle, start, err) }()
	c, e := target.collection, target.entry
	userAttributes(span, user, c)

	source, err := s.revisions.FindRevision(ctx, e.ID, target.options.RevisionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	wc := source.WorkingCopy()
	wc.UserID = user.ID
	wc.UpdatedAt = s.now()

	restored := e.Clone()
	wc.ApplyTo(restored)

	if c.Revisions {
		if err := s.workingCopies.SaveWorkingCopy(ctx, wc); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save working copy: %w", err)
		}
	} else {
		if err := s.ensureSlugFree(ctx, restored); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
		restored.UpdatedBy = user.ID
		restored.UpdatedAt = wc.UpdatedAt
		if err := s.entries.SaveEntry(ctx, restored); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save entry: %w", err)
		}
		s.reindex(ctx, c, restored)
	}

	if c.Revisions {
		message := target.options.Message
		if message == "" {
			message = fmt.Sprintf("Restored revision %s", source.ID)
		}
		revision := s.newRevision(restored, service.RevisionActionRestore, message, user)
		if err := s.revisions.CreateRevision(ctx, revision); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to record revision: %w", err)
		}
	}

	fresh, err := s.entries.FindEntry(ctx, e.ID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to reload entry: %w", err)
	}
	return fresh.ToPayload(), nil
}

func (s *entryService) newRevision(
	e *service.Entry,
	action service.RevisionAction,
	message string,
	user *service.ActingUser,
) *service.Revision {
	return &service.Revision{
		ID:         s.newID(),
		EntryID:    e.ID,
		Action:     action,
		Message:    message,
		UserID:     user.ID,
		Attributes: service.NewWorkingCopy(e).Attributes(),
		CreatedAt:  s.now(),
	}
}
