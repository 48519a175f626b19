//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/workoutlog/internal"
	"github.com/2beens/workoutlog/internal/config"
	"github.com/2beens/workoutlog/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	log "github.com/sirupsen/logrus"
)

const (
	serverPort = 9009
	serverHost = "localhost"

	testDBName     = "workoutlog_test"
	testAddPerMin  = 5
	testStorageKey = "workouts-integration"
)

var serverEndpoint = "http://" + net.JoinHostPort(serverHost, strconv.Itoa(serverPort))

type Suite struct {
	DB         *pgxpool.Pool
	dockerPool *dockertest.Pool
	server     *internal.Server
	cfg        *config.Config
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite, err error) {
	suite := &Suite{
		teardown: make([]func(), 0),
	}
	defer func() {
		if err != nil {
			suite.cleanup()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %w", err)
	}
	suite.dockerPool.MaxWait = time.Minute

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %w", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		return nil, fmt.Errorf("failed to setup redis: %w", err)
	}

	pgPort, err := suite.postgresSetup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres: %w", err)
	}

	suite.cfg = getTestConfig(redisPort, pgPort)
	if err := suite.startServer(ctx); err != nil {
		return nil, err
	}

	return suite, nil
}

func (s *Suite) startServer(ctx context.Context) error {
	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:           s.cfg,
			PostgresUser:     "postgres",
			PostgresPassword: "postgres",
		},
	)
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	s.server = server
	s.server.Serve(s.cfg.Host, s.cfg.Port)

	return s.waitForServer()
}

func (s *Suite) restartServer(ctx context.Context) error {
	s.server.GracefulShutdown()
	s.server = nil
	return s.startServer(ctx)
}

func (s *Suite) waitForServer() error {
	return s.dockerPool.Retry(func() error {
		resp, err := http.Get(serverEndpoint + "/workouts/types")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server not ready: %d", resp.StatusCode)
		}
		return nil
	})
}

func (s *Suite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	if s.DB != nil {
		s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	cfg := &config.Config{
		Host:               serverHost,
		Port:               serverPort,
		MetricsPort:        "2119",
		StorageBackend:     config.StorageBackendPostgres,
		StorageKey:         testStorageKey,
		RedisHost:          "localhost",
		RedisPort:          redisPort,
		PostgresPort:       postgresPort,
		PostgresHost:       "localhost",
		PostgresDBName:     testDBName,
		TimeZone:           "UTC",
		AddRateLimitPerMin: testAddPerMin,
	}
	cfg.SetDefaults()
	return cfg
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(redisResource); err != nil {
			log.Errorf("purge redis: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *Suite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=" + testDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(pgResource); err != nil {
			log.Errorf("purge postgres: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	if err := s.dockerPool.Retry(func() error {
		pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     "localhost",
			DBPort:     pgPort,
			DBName:     testDBName,
			DBUser:     "postgres",
			DBPassword: "postgres",
		})
		if err != nil {
			return err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		s.DB = pool
		return nil
	}); err != nil {
		return "", fmt.Errorf("connect to postgres: %w", err)
	}

	log.Printf("postgres ready on port %s", pgPort)
	return pgPort, nil
}
