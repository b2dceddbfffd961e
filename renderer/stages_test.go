package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type trace struct {
	events []string
}

func (tr *trace) stage(name string, fatal bool, err error) stage {
	return stage{
		name:  name,
		fatal: fatal,
		create: func() error {
			tr.events = append(tr.events, "create "+name)
			return err
		},
		release: func() {
			tr.events = append(tr.events, "release "+name)
		},
	}
}

func TestBuilderCreatesInOrder(t *testing.T) {
	tr := &trace{}
	b := &builder{log: zap.NewNop()}
	require.NoError(t, b.run([]stage{
		tr.stage("window", true, nil),
		tr.stage("instance", true, nil),
		tr.stage("device", true, nil),
	}))
	assert.Equal(t, []string{"create window", "create instance", "create device"}, tr.events)
	assert.Equal(t, []string{"window", "instance", "device"}, b.names())

	b.unwind()
	assert.Equal(t, []string{
		"create window", "create instance", "create device",
		"release device", "release instance", "release window",
	}, tr.events)
	assert.Empty(t, b.names())
}

func TestBuilderFatalFailureReleasesInReverse(t *testing.T) {
	boom := errors.New("boom")
	tr := &trace{}
	b := &builder{log: zap.NewNop()}
	err := b.run([]stage{
		tr.stage("window", true, nil),
		tr.stage("instance", true, nil),
		tr.stage("surface", true, boom),
		tr.stage("device", true, nil),
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "surface")
	assert.Equal(t, []string{
		"create window", "create instance", "create surface",
		"release instance", "release window",
	}, tr.events)
	assert.Empty(t, b.names())
}

func TestBuilderOptionalFailureContinues(t *testing.T) {
	tr := &trace{}
	b := &builder{log: zap.NewNop()}
	require.NoError(t, b.run([]stage{
		tr.stage("instance", true, nil),
		tr.stage("debug hook", false, errors.New("extension missing")),
		tr.stage("surface", true, nil),
	}))
	assert.Equal(t, []string{"instance", "surface"}, b.names())

	b.unwind()
	assert.NotContains(t, tr.events, "release debug hook")
	assert.Equal(t, "release instance", tr.events[len(tr.events)-1])
}

func TestBuilderNilRelease(t *testing.T) {
	b := &builder{log: zap.NewNop()}
	require.NoError(t, b.run([]stage{{name: "scene", fatal: true, create: func() error { return nil }}}))
	assert.NotPanics(t, b.unwind)
}
