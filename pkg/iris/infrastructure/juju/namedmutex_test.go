package juju

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMutexName() string {
	return fmt.Sprintf("iris-test-%d", os.Getpid())
}

func TestNamedMutexAcquirer_ExcludesSecondHolder(t *testing.T) {
	acquirer := NewNamedMutexAcquirer()
	name := testMutexName()

	first, err := acquirer.AcquireNamedMutex(name, time.Second)
	require.NoError(t, err)

	_, err = acquirer.AcquireNamedMutex(name, 200*time.Millisecond)
	assert.Error(t, err)

	first.Release()
	second, err := acquirer.AcquireNamedMutex(name, time.Second)
	require.NoError(t, err)
	second.Release()
}
