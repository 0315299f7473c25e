package dataset

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/depthtruth/utils"
)

// WriteJSON writes a record as a single JSON document.
func WriteJSON(w io.Writer, record interface{}) error {
	return json.NewEncoder(w).Encode(record)
}

type validator interface {
	Validate() error
}

func readRecord(r io.Reader, into validator, what string) error {
	if err := json.NewDecoder(r).Decode(into); err != nil {
		return utils.NewDecodeError("reading %s record: %v", what, err)
	}
	return errors.Wrapf(into.Validate(), "invalid %s record", what)
}

// ReadPointCloudDataset decodes and validates a point cloud record, including the legacy layout.
func ReadPointCloudDataset(r io.Reader) (*PointCloudDataset, error) {
	var ds PointCloudDataset
	if err := readRecord(r, &ds, "point cloud"); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ReadTOFDataset decodes and validates a depth frame record.
func ReadTOFDataset(r io.Reader) (*TOFDataset, error) {
	var ds TOFDataset
	if err := readRecord(r, &ds, "depth frame"); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ReadSceneDataset decodes and validates a scene record.
func ReadSceneDataset(r io.Reader) (*SceneDataset, error) {
	var ds SceneDataset
	if err := readRecord(r, &ds, "scene"); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ReadSensorDataset decodes a sensor snapshot.
func ReadSensorDataset(r io.Reader) (*SensorDataset, error) {
	var ds SensorDataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, utils.NewDecodeError("reading sensor record: %v", err)
	}
	return &ds, nil
}

var schemaRecords = map[string]interface{}{
	"pose":       &Pose{},
	"scene":      &SceneDataset{},
	"pointcloud": &PointCloudDataset{},
	"tof":        &TOFDataset{},
	"sensors":    &SensorDataset{},
}

// SchemaNames lists the records Schema knows about.
func SchemaNames() []string {
	names := lo.Keys(schemaRecords)
	sort.Strings(names)
	return names
}

// Schema returns the indented JSON Schema of the named record.
func Schema(name string) ([]byte, error) {
	record, ok := schemaRecords[name]
	if !ok {
		return nil, utils.NewConfigurationError("unknown record %q, expected one of %v", name, SchemaNames())
	}
	return json.MarshalIndent(jsonschema.Reflect(record), "", "  ")
}
