package redis

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/manavc-13/KIIT-Mailer/journal"
)

type RedisSuite struct {
	suite.Suite
	container testcontainers.Container
	addr      string
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	s.Require().NoError(err, "failed to start container")
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "6379")
	s.Require().NoError(err)
	s.addr = fmt.Sprintf("%s:%s", host, port.Port())
}

func (s *RedisSuite) TearDownSuite() {
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("failed to terminate container: %v", err)
		}
	}
}

func (s *RedisSuite) connect(key string, max int) *Client {
	c, err := Connect(context.Background(), Config{Addr: s.addr, Key: key, MaxEntries: max})
	s.Require().NoError(err)
	s.T().Cleanup(func() { s.NoError(c.Close()) })
	return c
}

func (s *RedisSuite) TestAppendTrimsToNewest() {
	ctx := context.Background()
	c := s.connect("test:trim", 3)
	s.Require().NoError(c.Clear(ctx))

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Require().NoError(c.Append(ctx, journal.Entry{Type: journal.TypeInfo, Message: strconv.Itoa(i), Time: at}))
	}

	entries, err := c.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("2", entries[0].Message)
	s.Equal("4", entries[2].Message)
	s.True(at.Equal(entries[0].Time))
}

func (s *RedisSuite) TestClear() {
	ctx := context.Background()
	c := s.connect("test:clear", 0)

	s.Require().NoError(c.Append(ctx, journal.Entry{Type: journal.TypeError, Message: "x"}))
	s.Require().NoError(c.Clear(ctx))

	entries, err := c.List(ctx)
	s.Require().NoError(err)
	s.Empty(entries)
	s.Equal(journal.MaxEntries, c.cfg.MaxEntries)
}

func (s *RedisSuite) TestSkipsMalformed() {
	ctx := context.Background()
	c := s.connect("test:malformed", 10)
	s.Require().NoError(c.Clear(ctx))

	s.Require().NoError(c.rdb.RPush(ctx, "test:malformed", "not json").Err())
	s.Require().NoError(c.Append(ctx, journal.Entry{Type: journal.TypeSuccess, Message: "ok"}))

	entries, err := c.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("ok", entries[0].Message)
}

func (s *RedisSuite) TestConnectFails() {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	s.Error(err)
}
