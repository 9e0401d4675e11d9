package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tino-q/ssonsoles-tasks/internal/model"
)

// ErrCleanerNotFound means the phone number matched no active cleaner. This
// is a validation failure, not a transport problem: no retry will help.
var ErrCleanerNotFound = errors.New("no active cleaner with that phone number")

// TaskFilters narrows getTasks. Zero fields are omitted from the request.
type TaskFilters struct {
	CleanerID string
	Status    model.TaskStatus
	Date      string
}

func (c *Client) GetTasks(ctx context.Context, f TaskFilters) ([]model.Task, error) {
	params := url.Values{}
	if f.CleanerID != "" {
		params.Set("cleanerId", f.CleanerID)
	}
	if f.Status != "" {
		params.Set("status", string(f.Status))
	}
	if f.Date != "" {
		params.Set("date", f.Date)
	}
	env, err := c.get(ctx, "getTasks", params)
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Task](env)
}

func (c *Client) CreateTask(ctx context.Context, t model.Task) (json.RawMessage, error) {
	env, err := c.post(ctx, "createTask", t)
	if err != nil {
		return nil, err
	}
	return DecodeValue[json.RawMessage](env)
}

// UpdateTask sends arbitrary field updates for a task. The backend merges
// them into the sheet row, so fields stays a loose map on purpose.
func (c *Client) UpdateTask(ctx context.Context, taskID string, fields map[string]any) (json.RawMessage, error) {
	payload := map[string]any{"id": taskID}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		payload[k] = v
	}
	env, err := c.post(ctx, "updateTask", payload)
	if err != nil {
		return nil, err
	}
	return DecodeValue[json.RawMessage](env)
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, status model.TaskStatus, comments string) error {
	env, err := c.post(ctx, "updateTaskStatus", map[string]any{
		"taskId":   taskID,
		"status":   string(status),
		"comments": comments,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) AssignTask(ctx context.Context, taskID, cleanerID string) error {
	env, err := c.post(ctx, "assignTask", map[string]any{
		"taskId":    taskID,
		"cleanerId": cleanerID,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetCleaners(ctx context.Context) ([]model.Cleaner, error) {
	env, err := c.get(ctx, "getCleaners", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Cleaner](env)
}

// FindCleanerByPhone implements login: fetch the cleaner list and match the
// phone number against active cleaners.
func (c *Client) FindCleanerByPhone(ctx context.Context, phone string) (model.Cleaner, error) {
	phone = strings.TrimSpace(phone)
	cleaners, err := c.GetCleaners(ctx)
	if err != nil {
		return model.Cleaner{}, err
	}
	for _, cl := range cleaners {
		if cl.Active && strings.TrimSpace(cl.Phone) == phone {
			return cl, nil
		}
	}
	return model.Cleaner{}, ErrCleanerNotFound
}

func (c *Client) LogEntry(ctx context.Context, taskID, userID string, ts time.Time) error {
	return c.logTiming(ctx, "logEntry", taskID, userID, ts)
}

func (c *Client) LogExit(ctx context.Context, taskID, userID string, ts time.Time) error {
	return c.logTiming(ctx, "logExit", taskID, userID, ts)
}

func (c *Client) logTiming(ctx context.Context, action, taskID, userID string, ts time.Time) error {
	payload := map[string]any{
		"taskId": taskID,
		"userId": userID,
	}
	if !ts.IsZero() {
		payload["timestamp"] = ts.UTC().Format(time.RFC3339)
	}
	env, err := c.post(ctx, action, payload)
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetTaskTimings(ctx context.Context, taskID string) ([]model.TaskTiming, error) {
	env, err := c.get(ctx, "getTaskTimings", url.Values{"taskId": {taskID}})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.TaskTiming](env)
}

func (c *Client) LogProductUsage(ctx context.Context, taskID, userID, productID string, quantity int, notes string) error {
	if quantity < 1 {
		quantity = 1
	}
	env, err := c.post(ctx, "logProductUsage", map[string]any{
		"taskId":    taskID,
		"userId":    userID,
		"productId": productID,
		"quantity":  quantity,
		"notes":     notes,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) LogMultipleProductUsage(ctx context.Context, taskID, userID string, usages []model.ProductUsage) error {
	env, err := c.post(ctx, "logMultipleProductUsage", map[string]any{
		"taskId":        taskID,
		"userId":        userID,
		"productUsages": usages,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetTaskProductUsage(ctx context.Context, taskID string) ([]model.ProductUsage, error) {
	env, err := c.get(ctx, "getTaskProductUsage", url.Values{"taskId": {taskID}})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.ProductUsage](env)
}

func (c *Client) AddComment(ctx context.Context, taskID, userID, text string, typ model.CommentType) error {
	if typ == "" {
		typ = model.CommentGeneral
	}
	env, err := c.post(ctx, "addComment", map[string]any{
		"taskId":      taskID,
		"userId":      userID,
		"comment":     text,
		"commentType": string(typ),
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	env, err := c.get(ctx, "getComments", url.Values{"taskId": {taskID}})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Comment](env)
}

func (c *Client) LogRejection(ctx context.Context, taskID, userID, reason string) error {
	env, err := c.post(ctx, "logRejection", map[string]any{
		"taskId":          taskID,
		"userId":          userID,
		"rejectionReason": reason,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) CreateProposal(ctx context.Context, taskID, userID, proposedTime, reason string) error {
	env, err := c.post(ctx, "createProposal", map[string]any{
		"taskId":         taskID,
		"userId":         userID,
		"proposedTime":   proposedTime,
		"proposalReason": reason,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetProducts(ctx context.Context) ([]model.Product, error) {
	env, err := c.get(ctx, "getProducts", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Product](env)
}

func (c *Client) RequestProducts(ctx context.Context, taskID string, requests []model.ProductUsage) error {
	env, err := c.post(ctx, "requestProducts", map[string]any{
		"taskId":          taskID,
		"productRequests": requests,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func (c *Client) GetMonthlyReport(ctx context.Context, month, year int, cleanerID string) (json.RawMessage, error) {
	params := url.Values{
		"month": {strconv.Itoa(month)},
		"year":  {strconv.Itoa(year)},
	}
	if cleanerID != "" {
		params.Set("cleanerId", cleanerID)
	}
	env, err := c.get(ctx, "getMonthlyReport", params)
	if err != nil {
		return nil, err
	}
	return DecodeValue[json.RawMessage](env)
}

func (c *Client) ImportReservations(ctx context.Context) (json.RawMessage, error) {
	env, err := c.post(ctx, "importReservations", nil)
	if err != nil {
		return nil, err
	}
	return DecodeValue[json.RawMessage](env)
}
