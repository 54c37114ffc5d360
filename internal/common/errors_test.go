package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrCodeGitHubAPI, "获取用户事件失败", cause)

	assert.Equal(t, "[GITHUB_API_ERROR] 获取用户事件失败: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewError(ErrCodeInvalidInput, "缺少访问令牌")
	assert.Equal(t, "[INVALID_INPUT] 缺少访问令牌", plain.Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("aggregate: %w", NewError(ErrCodeUnauthenticated, "no session"))

	assert.Equal(t, ErrCodeUnauthenticated, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrCodeInternal, CodeOf(nil))
}
