package dataset

// SensorData is a single motion sensor reading.
type SensorData struct {
	SensorName string    `json:"sensorName"`
	ID         int       `json:"id"`
	Timestamp  int64     `json:"timestamp"`
	Accuracy   int       `json:"accuracy"`
	Data       []float32 `json:"data"`
}

// SensorDataset is the motion sensor snapshot taken with a frame. Sensors that produced no
// reading are null.
type SensorDataset struct {
	Timestamp               int64       `json:"timestamp"`
	AccelerometerData       *SensorData `json:"accelerometerData"`
	LinearAccelerometerData *SensorData `json:"linearAccelerometerData"`
	GyroscopeData           *SensorData `json:"gyroscopeData"`
	Pose6DofData            *SensorData `json:"pose6DofData"`
}

// Readings returns the non-null readings in a fixed order.
func (s *SensorDataset) Readings() []*SensorData {
	var out []*SensorData
	for _, d := range []*SensorData{s.AccelerometerData, s.LinearAccelerometerData, s.GyroscopeData, s.Pose6DofData} {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}
