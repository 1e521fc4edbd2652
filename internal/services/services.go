package services

// ServiceManager groups the services the HTTP layer depends on
type ServiceManager interface {
	Grading() *GradingService
	Sessions() *QuizSessionService
	ImportExport() ImportExportService
	// GradingConfigured reports whether the upstream credential is present.
	GradingConfigured() bool
}

type serviceManager struct {
	grading           *GradingService
	sessions          *QuizSessionService
	importExport      ImportExportService
	gradingConfigured bool
}

func NewServiceManager(grading *GradingService, sessions *QuizSessionService, importExport ImportExportService, gradingConfigured bool) ServiceManager {
	return &serviceManager{
		grading:           grading,
		sessions:          sessions,
		importExport:      importExport,
		gradingConfigured: gradingConfigured,
	}
}

func (m *serviceManager) Grading() *GradingService {
	return m.grading
}

func (m *serviceManager) Sessions() *QuizSessionService {
	return m.sessions
}

func (m *serviceManager) ImportExport() ImportExportService {
	return m.importExport
}

func (m *serviceManager) GradingConfigured() bool {
	return m.gradingConfigured
}
