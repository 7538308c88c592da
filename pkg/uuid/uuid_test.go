// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

func TestNew_IsTimeOrdered(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.Equal(t, byte('7'), first[14], "version nibble")
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid("0190a6f2-7c1e-7b3a-9f00-1234567890ab"))
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("urn:uuid:0190a6f2-7c1e-7b3a-9f00-1234567890ab"))
	assert.False(t, uuid.Valid("{0190a6f2-7c1e-7b3a-9f00-1234567890ab}"))
}
