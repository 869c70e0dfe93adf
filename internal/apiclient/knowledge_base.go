package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/notify"
)

// CreateKnowledgeBase starts a new import
func (c *Client) CreateKnowledgeBase(ctx context.Context, req domain.KnowledgeBaseCreate) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	if err := c.do(ctx, http.MethodPost, "/knowledge-base", req, true, &kb); err != nil {
		return nil, err
	}

	c.notifier.Notify(notify.Success("Knowledge base created", fmt.Sprintf("%q is being processed", req.Name)))
	return &kb, nil
}

// ListKnowledgeBases returns every knowledge base of the current user
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error) {
	kbs := []domain.KnowledgeBase{}
	if err := c.do(ctx, http.MethodGet, "/knowledge-base", nil, true, &kbs); err != nil {
		return nil, err
	}
	return kbs, nil
}

// KnowledgeBaseStatus fetches a partial status update
func (c *Client) KnowledgeBaseStatus(ctx context.Context, id string) (*domain.KnowledgeBaseUpdate, error) {
	var update domain.KnowledgeBaseUpdate
	endpoint := "/knowledge-base/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, true, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// DeleteKnowledgeBase removes a knowledge base and its data
func (c *Client) DeleteKnowledgeBase(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/knowledge-base/"+url.PathEscape(id), nil, true, nil); err != nil {
		return err
	}

	c.notifier.Notify(notify.Info("Knowledge base deleted", "The knowledge base and its data were removed"))
	return nil
}
