package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hist/internal/tally"
)

var stdin io.Reader = os.Stdin

// readInput tallies the observations named by source: "-" for standard
// input, a redis://host/db#key URL for a Redis list, otherwise a file path.
func readInput(source string) (*tally.Tally, error) {
	switch {
	case source == "" || source == "-":
		return tally.Read(stdin)
	case isRedisURL(source):
		return readRedisList(source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer f.Close()
	t, err := tally.Read(f)
	return t, errors.Wrapf(err, "read %s", source)
}

func readRedisList(source string) (*tally.Tally, error) {
	server, key, err := splitListURL(source)
	if err != nil {
		return nil, err
	}
	conn, err := dialRedis(server)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	values, err := readList(conn, key)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"key": key, "elements": len(values)}).Debug("read redis list")
	return tally.FromLines(values), nil
}
