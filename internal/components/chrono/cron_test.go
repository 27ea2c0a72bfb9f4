package chrono

import (
	"errors"
	"testing"

	"redditbot/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestCronRejectsInvalidSpec(t *testing.T) {
	c := NewStandardCron(&telemetry.TestAPI{})
	defer c.Stop()

	require.Error(t, c.Cron("not a spec", func() {}))
	require.NoError(t, c.Cron("*/15 * * * *", func() {}))
}

func TestCronLoggerFormatsPairs(t *testing.T) {
	tel := &telemetry.TestAPI{}
	l := cronLogger{tel: tel}

	l.Error(errors.New("boom"), "run", "entry", 1)

	require.Equal(t, []string{"cron"}, tel.IDs("broken"))
	require.Len(t, tel.Reports[0].Params, 2)
	require.Equal(t, "entry: 1", tel.Reports[0].Params[1])
}
