package client

import (
	"context"
	"net/http"
	"net/url"

	"lingo_learn_client/internal/model"
)

func (c *Client) FetchCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	path := "/courses/" + url.PathEscape(courseID) + "/full"
	if err := c.do(ctx, http.MethodGet, path, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FetchModule 拉取单个模块，仅供展示，不参与核心变更路径
func (c *Client) FetchModule(ctx context.Context, moduleID string) (*model.Module, error) {
	var module model.Module
	path := "/lessons/" + url.PathEscape(moduleID)
	if err := c.do(ctx, http.MethodGet, path, nil, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *Client) FetchProfile(ctx context.Context) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
