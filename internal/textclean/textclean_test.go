package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextLeavesPlainInputAlone(t *testing.T) {
	in := "  I was walking through a forest.\nThen it rained.  "
	assert.Equal(t, "I was walking through a forest.\nThen it rained.", PlainText(in))
}

func TestPlainTextStripsMarkup(t *testing.T) {
	in := `<p>I was <b>flying</b> over the city</p><script>alert(1)</script><p>and woke up</p>`
	assert.Equal(t, "I was flying over the city\nand woke up", PlainText(in))
}

func TestPlainTextDecodesEntities(t *testing.T) {
	assert.Equal(t, "cats & dogs", PlainText("cats &amp; dogs"))
}

func TestPlainTextEmpty(t *testing.T) {
	assert.Equal(t, "", PlainText("   "))
	assert.Equal(t, "", PlainText("<br><br>"))
}

func TestPlainTextTruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("é", MaxLength)
	out := PlainText(in)
	assert.LessOrEqual(t, len(out), MaxLength)
	assert.True(t, strings.HasPrefix(in, out))
	assert.Equal(t, 0, len(out)%2)
}

func TestPlainTextKeepsTextThatLooksLikeMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a<b", "a<b"},
		{"dog <ran> away", "dog <ran> away"},
		{"I knew x<y in the dream and then a dog <ran> away", "I knew x<y in the dream and then a dog <ran> away"},
		{"I <3 flying dreams", "I <3 flying dreams"},
		{"<p>a dog <ran> away</p>", "a dog <ran> away"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
