// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/lorecraft/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalConceptMetric serializes a ConceptMetric to bytes.
func MarshalConceptMetric(metric *core.ConceptMetric) []byte {
	buf := make([]byte, core.ConceptMetricMUS.Size(*metric))
	core.ConceptMetricMUS.Marshal(*metric, buf)
	return buf
}

// UnmarshalConceptMetric deserializes a ConceptMetric from bytes.
func UnmarshalConceptMetric(data []byte) (*core.ConceptMetric, error) {
	metric, _, err := core.ConceptMetricMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// MarshalQueryRecord serializes a QueryRecord to bytes.
func MarshalQueryRecord(record *core.QueryRecord) []byte {
	buf := make([]byte, core.QueryRecordMUS.Size(*record))
	core.QueryRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalQueryRecord deserializes a QueryRecord from bytes.
func UnmarshalQueryRecord(data []byte) (*core.QueryRecord, error) {
	record, _, err := core.QueryRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalFingerprint serializes a Fingerprint to bytes.
func MarshalFingerprint(fingerprint *core.Fingerprint) []byte {
	buf := make([]byte, core.FingerprintMUS.Size(*fingerprint))
	core.FingerprintMUS.Marshal(*fingerprint, buf)
	return buf
}

// UnmarshalFingerprint deserializes a Fingerprint from bytes.
func UnmarshalFingerprint(data []byte) (*core.Fingerprint, error) {
	fingerprint, _, err := core.FingerprintMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &fingerprint, nil
}
