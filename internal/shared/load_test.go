package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type userErr struct{}

func (userErr) Error() string       { return "backend said no" }
func (userErr) UserMessage() string { return "Customer not found" }

func TestLoadSuccess(t *testing.T) {
	res := Load(context.Background(), func(context.Context) ([]int, error) { return []int{1, 2}, nil })
	assert.True(t, res.OK())
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []int{1, 2}, res.Data)
	assert.Empty(t, res.Message())
}

func TestLoadError(t *testing.T) {
	res := Load(context.Background(), func(context.Context) ([]int, error) {
		return []int{9}, fmt.Errorf("list: %w", userErr{})
	})
	assert.False(t, res.OK())
	assert.Equal(t, StatusError, res.Status)
	assert.Nil(t, res.Data)
	assert.Equal(t, "Customer not found", res.Message())

	plain := Load(context.Background(), func(context.Context) (int, error) { return 0, errors.New("boom") })
	assert.Equal(t, FallbackMessage, plain.Message())
}

func TestLoading(t *testing.T) {
	assert.Equal(t, StatusLoading, Loading[string]().Status)
}

func TestResultNotice(t *testing.T) {
	ok := Load(context.Background(), func(context.Context) (int, error) { return 1, nil })
	assert.Nil(t, ok.Notice())

	failed := Load(context.Background(), func(context.Context) (int, error) { return 0, errors.New("boom") })
	notice := failed.Notice()
	if assert.NotNil(t, notice) {
		assert.Equal(t, NoticeError, notice.Kind)
		assert.Equal(t, FallbackMessage, notice.Message)
	}
}
