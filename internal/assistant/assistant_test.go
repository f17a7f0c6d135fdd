package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	calls   int
	prompt  string
	content string
	err     error
	wait    bool
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.content, f.err
}

const sampleCompletion = `العنوان الأول: [رحلة الضوء]
- بداية الفجر
- انكسار الظلال

العنوان الثاني: همس البحر
- موج يحكي
- رمال الذاكرة
- وداع الشاطئ

العنوان الثالث: عنوان بلا نقاط
`

func TestSuggest(t *testing.T) {
	fake := &fakeCompleter{content: sampleCompletion}
	a := New(fake, 0)

	resp, err := a.Suggest(context.Background(), []string{" قمر ", "", "بحر", "   "})
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, fake.prompt, "قمر, بحر")
	assert.Contains(t, fake.prompt, "العنوان الثالث: [العنوان]")

	require.Len(t, resp.Titles, 2)
	assert.Equal(t, "رحلة الضوء", resp.Titles[0].Title)
	assert.Equal(t, []string{"بداية الفجر", "انكسار الظلال"}, resp.Titles[0].Points)
	assert.Equal(t, "همس البحر", resp.Titles[1].Title)
	assert.Len(t, resp.Titles[1].Points, 3)
}

func TestSuggest_NoWordsMakesNoCall(t *testing.T) {
	fake := &fakeCompleter{}
	a := New(fake, 0)

	_, err := a.Suggest(context.Background(), []string{"", "  "})
	assert.ErrorIs(t, err, ErrNoWords)
	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, MsgNoWords, Message(err))
}

func TestSuggest_EmptyCompletion(t *testing.T) {
	a := New(&fakeCompleter{content: "  \n"}, 0)

	_, err := a.Suggest(context.Background(), []string{"ليل"})
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.Equal(t, MsgNoResponse, Message(err))
}

func TestSuggest_Timeout(t *testing.T) {
	a := New(&fakeCompleter{wait: true}, 10*time.Millisecond)

	_, err := a.Suggest(context.Background(), []string{"ليل"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, MsgUnavailable, Message(err))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Suggestion
	}{
		{
			name:    "empty",
			content: "",
			want:    []Suggestion{},
		},
		{
			name:    "prose only",
			content: "لا أستطيع المساعدة في ذلك.",
			want:    []Suggestion{},
		},
		{
			name:    "points before any title are ignored",
			content: "- شارد\nالعنوان: وحيد\n- نقطة",
			want:    []Suggestion{{Title: "وحيد", Points: []string{"نقطة"}}},
		},
		{
			name:    "english markers and other bullets",
			content: "Title 1: Night Road\n• first\n* second\n-   \n",
			want:    []Suggestion{{Title: "Night Road", Points: []string{"first", "second"}}},
		},
		{
			name:    "marker without colon is not a title",
			content: "العنوان الأول\n- نقطة",
			want:    []Suggestion{},
		},
		{
			name:    "empty title is dropped",
			content: "العنوان الأول:\n- نقطة",
			want:    []Suggestion{},
		},
		{
			name:    "marker inside a longer word is a point",
			content: "Title: Harbour\n- subtitle: the tide\n- entitled: gulls",
			want:    []Suggestion{{Title: "Harbour", Points: []string{"subtitle: the tide", "entitled: gulls"}}},
		},
		{
			name:    "marker after the colon does not open a title",
			content: "العنوان: بحر\n- ملاحظة: ضع العنوان في الأعلى",
			want:    []Suggestion{{Title: "بحر", Points: []string{"ملاحظة: ضع العنوان في الأعلى"}}},
		},
		{
			name:    "bold numbered marker",
			content: "**العنوان 2**: ليل\n- أول",
			want:    []Suggestion{{Title: "ليل", Points: []string{"أول"}}},
		},
		{
			name:    "windows line endings",
			content: "العنوان: سفر\r\n- أول\r\n- ثان\r\n",
			want:    []Suggestion{{Title: "سفر", Points: []string{"أول", "ثان"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"أ", "ب"})
	assert.True(t, strings.HasPrefix(prompt, promptHeader+"أ, ب\n"))
	assert.Equal(t, 3, strings.Count(prompt, ": [العنوان]"))
	assert.Equal(t, 15, strings.Count(prompt, "\n- "))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unauthorized",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Incorrect API key provided"},
			want: ErrInvalidKey,
		},
		{
			name: "quota code",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Code: "insufficient_quota"},
			want: ErrQuotaExceeded,
		},
		{
			name: "quota message",
			err:  fmt.Errorf("wrapped: %w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "You exceeded your current quota"}),
			want: ErrQuotaExceeded,
		},
		{
			name: "request error unauthorized",
			err:  &openai.RequestError{HTTPStatusCode: http.StatusUnauthorized, Err: errors.New("denied")},
			want: ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
	assert.Equal(t, MsgUnavailable, Message(classify(plain)))
}
