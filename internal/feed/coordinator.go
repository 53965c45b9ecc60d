package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deephealth-lab/community/internal/models"
)

// ErrEmptyContent is returned when a post or comment body is blank after
// trimming.
var ErrEmptyContent = errors.New("content must not be empty")

// Coordinator applies user mutations with zero perceived latency: the local
// edit lands synchronously, the server call follows, and the server's full
// post replaces the optimistic guess. A failed or superseded call falls back
// to a full resync of the affected post rather than a manual rollback.
type Coordinator struct {
	client Client
	store  *Accumulator
	detail *Reconciler
	userID string
}

func NewCoordinator(client Client, store *Accumulator, detail *Reconciler, userID string) *Coordinator {
	return &Coordinator{client: client, store: store, detail: detail, userID: userID}
}

// ToggleLike flips the current user's like on a post. Liking removes any
// standing dislike, so a user id never sits in both sets.
func (c *Coordinator) ToggleLike(ctx context.Context, postID string) error {
	rev, _ := c.store.Mutate(postID, func(p *models.Post) {
		applyToggle(p, c.userID, true)
	})
	c.syncDetail(postID)

	updated, err := c.client.ToggleLike(ctx, postID)
	return c.reconcile(ctx, postID, rev, updated, err)
}

// ToggleDislike is the symmetric operation.
func (c *Coordinator) ToggleDislike(ctx context.Context, postID string) error {
	rev, _ := c.store.Mutate(postID, func(p *models.Post) {
		applyToggle(p, c.userID, false)
	})
	c.syncDetail(postID)

	updated, err := c.client.ToggleDislike(ctx, postID)
	return c.reconcile(ctx, postID, rev, updated, err)
}

// AddComment posts a comment (optionally a reply) and replaces the local
// post with the server's version, which carries the authoritative comment
// list and count. No optimistic comment is inserted; ordering and counting
// belong to the server.
func (c *Coordinator) AddComment(ctx context.Context, postID, content string, parentID *string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	rev, _ := c.store.Touch(postID)

	updated, err := c.client.AddComment(ctx, postID, content, parentID)
	return c.reconcile(ctx, postID, rev, updated, err)
}

// reconcile applies a server response under the revision guard. A stale
// response (another optimistic edit raced in after ours) and a failed call
// both resolve the same way: refetch the post and overwrite local state with
// ground truth.
func (c *Coordinator) reconcile(ctx context.Context, postID string, rev uint64, updated *models.Post, err error) error {
	if err != nil {
		if rerr := c.resync(ctx, postID); rerr != nil {
			return fmt.Errorf("mutation failed (%w), resync failed: %w", err, rerr)
		}
		return fmt.Errorf("mutation failed, state restored: %w", err)
	}

	if c.store.ApplyIfCurrent(postID, rev, *updated) {
		c.pushDetail(*updated)
		return nil
	}
	return c.resync(ctx, postID)
}

func (c *Coordinator) resync(ctx context.Context, postID string) error {
	truth, err := c.client.FetchPostDetail(ctx, postID)
	if err != nil {
		return fmt.Errorf("resync post %s: %w", postID, err)
	}
	c.store.Replace(postID, *truth)
	c.pushDetail(*truth)
	return nil
}

// syncDetail mirrors the stored post into the open detail view, if this
// post is the one open. Posts reached by deep link live only in the detail
// view, so the server copy is pushed there directly elsewhere.
func (c *Coordinator) syncDetail(postID string) {
	if c.detail == nil {
		return
	}
	if p, _, ok := c.store.Get(postID); ok {
		c.detail.ReplaceIfOpen(p)
	}
}

func (c *Coordinator) pushDetail(p models.Post) {
	if c.detail != nil {
		c.detail.ReplaceIfOpen(p)
	}
}

// applyToggle edits the like/dislike sets in place. Membership in the
// target set removes the user (an un-like); otherwise the user is added and
// stripped from the opposite set.
func applyToggle(p *models.Post, userID string, like bool) {
	target, opposite := &p.Likes, &p.Dislikes
	if !like {
		target, opposite = opposite, target
	}

	if containsID(*target, userID) {
		*target = removeID(*target, userID)
		return
	}
	// Fresh slices throughout: snapshots handed out earlier must not see
	// this edit through a shared backing array.
	added := make([]string, 0, len(*target)+1)
	added = append(added, *target...)
	*target = append(added, userID)
	*opposite = removeID(*opposite, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
