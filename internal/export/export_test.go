package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestToDelimitedText(t *testing.T) {
	posts := []models.Post{
		{
			Title:       `He said "hi"`,
			Subreddit:   "apple",
			Author:      "jane",
			Score:       42,
			NumComments: 7,
			UpvoteRatio: 0.875,
			Created:     time.Date(2024, 3, 1, 10, 5, 9, 0, time.UTC),
			Permalink:   "/r/apple/comments/a1/he_said_hi/",
		},
		{
			Title:       "Commas, everywhere",
			Subreddit:   "technology",
			Author:      "bob",
			Score:       -3,
			NumComments: 0,
			UpvoteRatio: 0.4,
			Created:     time.Date(2024, 2, 28, 23, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			Permalink:   "/r/technology/comments/b2/",
		},
	}

	out, err := ToDelimitedText(posts)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Title","Subreddit","Author","Score","Comments","Upvote Ratio","Created","URL"`, lines[0])
	assert.Equal(t,
		`"He said ""hi""","apple","jane","42","7","87.5%","2024-03-01T10:05:09.000Z","https://reddit.com/r/apple/comments/a1/he_said_hi/"`,
		lines[1])
	assert.Equal(t,
		`"Commas, everywhere","technology","bob","-3","0","40.0%","2024-02-29T04:00:00.000Z","https://reddit.com/r/technology/comments/b2/"`,
		lines[2])
}

func TestToDelimitedText_Empty(t *testing.T) {
	out, err := ToDelimitedText(nil)
	assert.Empty(t, out)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "reddit-search-2024-03-01.csv", FileName(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)))

	// 20:00 on the US west coast is already the next day in UTC
	pacific := time.FixedZone("PST", -8*3600)
	assert.Equal(t, "reddit-search-2024-03-02.csv", FileName(time.Date(2024, 3, 1, 20, 0, 0, 0, pacific)))
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func TestMailer_Send(t *testing.T) {
	sender := &MockSender{}
	var sent *gomail.Message
	sender.On("DialAndSend", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).([]*gomail.Message)[0]
	}).Return(nil)

	mailer := &Mailer{from: "bot@example.com", sender: sender}
	require.NoError(t, mailer.Send("team@example.com", "reddit-search-2024-03-01.csv", []byte(`"Title"`), 1))

	require.NotNil(t, sent)
	assert.Equal(t, []string{"team@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Reddit search export - reddit-search-2024-03-01.csv (1 results)"}, sent.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "reddit-search-2024-03-01.csv")
}

func TestMailer_SendErrors(t *testing.T) {
	sender := &MockSender{}
	sender.On("DialAndSend", mock.Anything).Return(errors.New("connection refused"))
	mailer := &Mailer{from: "bot@example.com", sender: sender}

	assert.Error(t, mailer.Send("", "f.csv", nil, 0))
	sender.AssertNotCalled(t, "DialAndSend", mock.Anything)

	err := mailer.Send("team@example.com", "f.csv", []byte("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
