package v1

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"axiapac.com/timetrack/model"
)

const pathUsers = "/user"

type UserQuery struct {
	Skip      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

func (q UserQuery) values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(q.Skip))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sort_order", q.SortOrder)
	}
	return v
}

type UserPage struct {
	Total int64               `json:"total"`
	Skip  int                 `json:"skip"`
	Limit int                 `json:"limit"`
	Users []model.UserSummary `json:"users" validate:"dive"`
}

type UserEndpoint struct {
	transport *Transport
}

func (ep *UserEndpoint) List(ctx context.Context, q UserQuery) (*UserPage, error) {
	resp, err := ep.transport.Get(ctx, pathUsers, q.values())
	if err != nil {
		return nil, err
	}
	page, err := decode[UserPage](http.MethodGet, pathUsers, resp)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
