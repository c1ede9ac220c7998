package core

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type commentBody struct {
	Text string `json:"text"`
}

// ListComments fetches every comment on a record, oldest first, following
// the same offset continuation contract as record listing. Mention tokens in
// the text (@[usrXXX]) are passed through untouched.
func (c *Client) ListComments(ctx context.Context, table string, recordID string, pageSize int) ([]Comment, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return nil, c.mapError(fmt.Errorf("core: table and record id are required"))
	}

	return CollectPages(ctx, 0, func(ctx context.Context, offset string) ([]Comment, string, error) {
		page, err := c.ListCommentsPage(ctx, table, recordID, pageSize, offset)
		if err != nil {
			return nil, "", err
		}
		return page.Comments, page.Offset, nil
	})
}

func (c *Client) ListCommentsPage(
	ctx context.Context,
	table string,
	recordID string,
	pageSize int,
	offset string,
) (CommentPage, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return CommentPage{}, c.mapError(fmt.Errorf("core: table and record id are required"))
	}

	query := map[string]string{}
	if pageSize > 0 {
		query["pageSize"] = strconv.Itoa(pageSize)
	}
	if strings.TrimSpace(offset) != "" {
		query["offset"] = strings.TrimSpace(offset)
	}

	page := CommentPage{}
	path := c.tablePath(table, recordID, "comments")
	if err := c.DoJSON(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return CommentPage{}, err
	}
	return page, nil
}

func (c *Client) CreateComment(ctx context.Context, table string, recordID string, text string) (Comment, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return Comment{}, c.mapError(fmt.Errorf("core: table and record id are required"))
	}
	if strings.TrimSpace(text) == "" {
		return Comment{}, c.mapError(fmt.Errorf("core: comment text is required"))
	}
	comment := Comment{}
	path := c.tablePath(table, recordID, "comments")
	if err := c.DoJSON(ctx, http.MethodPost, path, nil, commentBody{Text: text}, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (c *Client) UpdateComment(
	ctx context.Context,
	table string,
	recordID string,
	commentID string,
	text string,
) (Comment, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	commentID = strings.TrimSpace(commentID)
	if table == "" || recordID == "" || commentID == "" {
		return Comment{}, c.mapError(fmt.Errorf("core: table, record id, and comment id are required"))
	}
	if strings.TrimSpace(text) == "" {
		return Comment{}, c.mapError(fmt.Errorf("core: comment text is required"))
	}
	comment := Comment{}
	path := c.tablePath(table, recordID, "comments", commentID)
	if err := c.DoJSON(ctx, http.MethodPatch, path, nil, commentBody{Text: text}, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (c *Client) DeleteComment(
	ctx context.Context,
	table string,
	recordID string,
	commentID string,
) (DeleteResult, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	commentID = strings.TrimSpace(commentID)
	if table == "" || recordID == "" || commentID == "" {
		return DeleteResult{}, c.mapError(fmt.Errorf("core: table, record id, and comment id are required"))
	}
	result := DeleteResult{}
	path := c.tablePath(table, recordID, "comments", commentID)
	if err := c.DoJSON(ctx, http.MethodDelete, path, nil, nil, &result); err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}
