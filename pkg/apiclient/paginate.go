package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Pagination is the normalized paging metadata.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}

// Page is one page of results in a shape that does not depend on the
// endpoint's field names.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PageQuery selects a page and carries endpoint-specific filters.
type PageQuery struct {
	Page    int
	Limit   int
	Filters url.Values
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	for k, vs := range q.Filters {
		for _, s := range vs {
			if s != "" {
				v.Add(k, s)
			}
		}
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}
	v.Set("page", strconv.Itoa(q.page()))
	v.Set("limit", strconv.Itoa(limit))
	return v
}

// page is the page number actually requested; anything below 1 means the
// first page.
func (q PageQuery) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

// GetPage fetches one page from a list endpoint. It accepts both
// {data: [...], pagination: {...}} at the envelope level and a data object
// wrapping the list (items, data or results) with pagination or meta.
func GetPage[T any](ctx context.Context, c *Client, path string, q PageQuery, opts ...CallOption) (*Page[T], error) {
	opts = append(opts, WithQuery(q.values()))
	resp, err := c.Send(ctx, "GET", path, nil, opts...)
	if err != nil {
		return nil, err
	}

	page, err := normalizePage[T](resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:    KindServerError,
			Status:  resp.StatusCode,
			Message: "unexpected list response shape",
			Method:  "GET",
			Path:    path,
			Err:     err,
		}
	}
	if page.Pagination.Page == 0 {
		page.Pagination.Page = q.page()
	}
	return page, nil
}

type rawPagination struct {
	Page       *int   `json:"page"`
	Current    *int   `json:"current_page"`
	Limit      *int   `json:"limit"`
	PerPage    *int   `json:"per_page"`
	PageSize   *int   `json:"pageSize"`
	Total      *int64 `json:"total"`
	TotalCount *int64 `json:"total_count"`
	Pages      *int   `json:"pages"`
	TotalPages *int   `json:"total_pages"`
	TotalPgs   *int   `json:"totalPages"`
}

func (r *rawPagination) normalize() Pagination {
	var p Pagination
	p.Page = firstInt(r.Page, r.Current)
	p.Limit = firstInt(r.Limit, r.PerPage, r.PageSize)
	switch {
	case r.Total != nil:
		p.Total = *r.Total
	case r.TotalCount != nil:
		p.Total = *r.TotalCount
	}
	p.Pages = firstInt(r.Pages, r.TotalPages, r.TotalPgs)
	if p.Pages == 0 && p.Limit > 0 {
		p.Pages = int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return p
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

type listContainer struct {
	Data       json.RawMessage `json:"data"`
	Items      json.RawMessage `json:"items"`
	Results    json.RawMessage `json:"results"`
	Pagination *rawPagination  `json:"pagination"`
	Meta       *rawPagination  `json:"meta"`
}

func (l *listContainer) list() json.RawMessage {
	for _, raw := range []json.RawMessage{l.Items, l.Results, l.Data} {
		if len(raw) > 0 && raw[0] == '[' {
			return raw
		}
	}
	return nil
}

func (l *listContainer) paging() *rawPagination {
	if l.Pagination != nil {
		return l.Pagination
	}
	return l.Meta
}

func normalizePage[T any](body []byte) (*Page[T], error) {
	var outer listContainer
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, err
	}

	list, paging := outer.list(), outer.paging()
	if list == nil && len(outer.Data) > 0 && outer.Data[0] == '{' {
		var inner listContainer
		if err := json.Unmarshal(outer.Data, &inner); err != nil {
			return nil, err
		}
		list = inner.list()
		if p := inner.paging(); p != nil {
			paging = p
		}
	}
	if list == nil {
		return nil, fmt.Errorf("no list found in response")
	}

	page := &Page[T]{}
	if err := json.Unmarshal(list, &page.Data); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	if paging != nil {
		page.Pagination = paging.normalize()
	} else {
		page.Pagination = Pagination{Page: 1, Limit: len(page.Data), Total: int64(len(page.Data)), Pages: 1}
	}
	return page, nil
}
