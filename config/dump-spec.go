package config

import (
	"io/ioutil"
	"os"
	"path"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
)

// DumpSpec describes one table dump: the query to stream from the replica, the dataset
// name used in the partition path, the warehouse table to load and the partition leaf.
type DumpSpec struct {
	Name  string   `json:"name"`            // dataset name; first element of the partition path.
	Query string   `json:"query"`           // SQL executed on the replica via the named cursor.
	Args  []string `json:"args,omitempty"`  // bind args; the ${snapshotDate} token is replaced per run.
	Table string   `json:"table,omitempty"` // warehouse table name; defaults to Name.
	Leaf  string   `json:"leaf,omitempty"`  // partition leaf; defaults to "data".
}

// TableName returns the warehouse table the dump loads into.
func (d DumpSpec) TableName() string {
	if d.Table != "" {
		return d.Table
	}
	return d.Name
}

// LeafName returns the final element of the partition path.
func (d DumpSpec) LeafName() string {
	if d.Leaf != "" {
		return d.Leaf
	}
	return c.PartitionLeafDefault
}

// BindArgs resolves the dump's args for one run, substituting the snapshot date token.
// Args are passed to the cursor declaration as bind values, never spliced into SQL text.
func (d DumpSpec) BindArgs(snapshotDate string) []interface{} {
	retval := make([]interface{}, len(d.Args))
	for idx, a := range d.Args {
		if a == c.TokenSnapshotDate {
			retval[idx] = snapshotDate
		} else {
			retval[idx] = a
		}
	}
	return retval
}

// Validate rejects specs that cannot produce a well-formed dump.
func (d DumpSpec) Validate() error {
	if d.Name == "" {
		return errors.New("dump spec is missing a dataset name")
	}
	if d.Query == "" {
		return errors.Errorf("dump spec %q is missing a query", d.Name)
	}
	return nil
}

// DefaultDumpSpecs returns the built-in table set used when no spec file exists:
// full dumps of users and projects plus the previous day's activity increment.
func DefaultDumpSpecs() []DumpSpec {
	return []DumpSpec{
		{
			Name:  "users",
			Query: "select * from users",
		},
		{
			Name:  "projects",
			Query: "select * from projects",
		},
		{
			Name:  "activities",
			Query: "select * from activities where created_at >= $1::date and created_at < $1::date + interval '1 day'",
			Args:  []string{c.TokenSnapshotDate},
			Leaf:  "incremental",
		},
	}
}

// DefaultDumpSpecFile returns the conventional spec file location in the user's home dir.
func DefaultDumpSpecFile() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "unable to find home directory")
	}
	return path.Join(home, c.DumpSpecDirName, c.DumpSpecFileName), nil
}

// LoadDumpSpecs reads the YAML spec file, falling back to DefaultDumpSpecs when fileName
// is empty and the conventional file does not exist. A fileName supplied explicitly must
// exist; a missing file is an error in that case.
func LoadDumpSpecs(fileName string) ([]DumpSpec, error) {
	explicit := fileName != ""
	if !explicit {
		var err error
		fileName, err = DefaultDumpSpecFile()
		if err != nil {
			return nil, err
		}
	}
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) && !explicit { // if the conventional file is absent...
			return DefaultDumpSpecs(), nil
		}
		return nil, errors.Wrapf(err, "unable to read dump spec file %v", fileName)
	}
	var specs []DumpSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, errors.Wrapf(err, "unable to parse dump spec file %v", fileName)
	}
	if len(specs) == 0 {
		return nil, errors.Errorf("dump spec file %v contains no table dumps", fileName)
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(err, "dump spec file %v", fileName)
		}
	}
	return specs, nil
}
