package main

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

const jobClass = "HistogramWorker"

type queueJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
}

// histogramJob asks the worker to tally the Redis list Key and store the
// result under RunID.
type histogramJob struct {
	RunID int64
	Key   string
}

// parseJob decodes a queue payload {"class":"HistogramWorker","args":[id,"key"]}.
func parseJob(payload string) (histogramJob, error) {
	var job queueJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return histogramJob{}, errors.Wrap(err, "invalid job json")
	}
	if job.Class != jobClass {
		return histogramJob{}, errors.Errorf("unsupported job class %q", job.Class)
	}
	if len(job.Args) < 2 {
		return histogramJob{}, errors.Errorf("job needs run id and list key, got %d args", len(job.Args))
	}
	id, err := parseInt64(job.Args[0])
	if err != nil {
		return histogramJob{}, errors.Wrap(err, "run id")
	}
	if id == 0 {
		return histogramJob{}, errors.New("job missing run id")
	}
	var key string
	if err := json.Unmarshal(job.Args[1], &key); err != nil || key == "" {
		return histogramJob{}, errors.Errorf("invalid list key: %s", string(job.Args[1]))
	}
	return histogramJob{RunID: id, Key: key}, nil
}

// parseInt64 extracts an int64 from a job argument that may be encoded
// either as a JSON number or as a quoted string.
func parseInt64(raw json.RawMessage) (int64, error) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return 0, errors.New("empty string")
		}
		v, err := strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse %q", asString)
		}
		return v, nil
	}

	return 0, errors.Errorf("unsupported arg: %s", string(raw))
}
