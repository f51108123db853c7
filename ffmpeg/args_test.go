package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitExtraArgs(t *testing.T) {
	t.Run("valid args", func(t *testing.T) {
		args, err := SplitExtraArgs(`-threads 2 -metadata "title=my clip"`)
		assert.NoError(t, err)
		assert.Equal(t, []string{"-threads", "2", "-metadata", "title=my clip"}, args)
	})

	t.Run("empty string", func(t *testing.T) {
		args, err := SplitExtraArgs("   ")
		assert.NoError(t, err)
		assert.Nil(t, args)
	})

	t.Run("disallowed character (semicolon)", func(t *testing.T) {
		_, err := SplitExtraArgs(`-threads 2; ls`)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "disallowed character found in argument: 2;")
	})

	t.Run("disallowed character (dollar)", func(t *testing.T) {
		_, err := SplitExtraArgs(`-vf "crop=$(($RANDOM))"`)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "disallowed character")
	})

	t.Run("unterminated quote", func(t *testing.T) {
		_, err := SplitExtraArgs(`-metadata "broken`)
		assert.Error(t, err)
	})
}
