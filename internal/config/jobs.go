package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// jobsFile is the manifest layout with the requests nested under "jobs".
type jobsFile struct {
	Jobs []map[string]interface{} `yaml:"jobs"`
}

// LoadJobs reads a batch manifest: a YAML list of request mappings, either at
// the top level or under a "jobs" key.
//
// Example:
//
//	jobs:
//	  - sourcePath: data/file1.sas7bdat
//	    destinationPath: out/file1.xml
//	    rootNodeName: people
//
// The mappings are returned as read; key validation happens in the batch driver.
func LoadJobs(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read jobs file")
	}
	return ParseJobs(data)
}

// ParseJobs parses manifest bytes. See LoadJobs.
func ParseJobs(data []byte) ([]map[string]interface{}, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "failed to parse jobs file")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var jobs []map[string]interface{}
		if err := root.Decode(&jobs); err != nil {
			return nil, errors.Wrap(err, "failed to decode jobs list")
		}
		return jobs, nil

	case yaml.MappingNode:
		var file jobsFile
		if err := root.Decode(&file); err != nil {
			return nil, errors.Wrap(err, "failed to decode jobs file")
		}
		return file.Jobs, nil

	default:
		return nil, errors.New("jobs file must be a list of jobs or a mapping with a jobs key")
	}
}
