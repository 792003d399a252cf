// Package memory provides an in-memory repository for development and
// tests. All stores copy on read and write so callers can never alias
// internal state.
package memory

import (
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
)

type Memory struct {
	assessment *assessmentRepository
	history    *historyRepository
	department *departmentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		assessment: newAssessmentRepository(),
		history:    newHistoryRepository(),
		department: newDepartmentRepository(),
	}
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) History() interfaces.HistoryRepository {
	return m.history
}

func (m *Memory) Department() interfaces.DepartmentRepository {
	return m.department
}

func (m *Memory) Close() error {
	return nil
}
