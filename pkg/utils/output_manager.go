package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OperatorPlaceholder is replaced by the sanitized operator name in file patterns.
const OperatorPlaceholder = "{operator}"

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// SanitizeFileName makes name safe as a single path segment: path separators become
// underscores and surrounding whitespace is dropped.
func SanitizeFileName(name string) string {
	clean := strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	clean = strings.TrimSpace(clean)
	if clean == "" || clean == "." || clean == ".." {
		return "operator"
	}
	return clean
}

// OperatorFileName expands pattern with the sanitized operator name.
func OperatorFileName(pattern, operatorName string) string {
	if pattern == "" {
		pattern = "Matches_for_" + OperatorPlaceholder + ".xlsx"
	}
	return strings.ReplaceAll(pattern, OperatorPlaceholder, SanitizeFileName(operatorName))
}

// CheckFilePattern rejects a file name pattern that is not a single path segment, so
// an expanded pattern always stays inside its directory. An empty pattern is allowed.
func CheckFilePattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	if strings.ContainsAny(pattern, `/\`) || pattern == "." || pattern == ".." ||
		pattern != filepath.Base(pattern) {
		return fmt.Errorf("file pattern %q must be a plain file name", pattern)
	}
	return nil
}

// EnsureParentDir creates every directory leading up to filePath.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CreateJobOutputDir creates a run-specific directory for a job's outputs
func (om *OutputManager) CreateJobOutputDir(jobID string) (string, error) {
	jobDir := filepath.Join(om.BaseOutputDir, jobID)

	// Create the directory if it doesn't exist
	err := os.MkdirAll(jobDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}

	return jobDir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(jobID, fileName string) (string, error) {
	jobDir, err := om.CreateJobOutputDir(jobID)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	cleanFileName := SanitizeFileName(fileName)

	return filepath.Join(jobDir, cleanFileName), nil
}

// ResolveDownloadPath maps a download request back onto a file inside the job
// directory. Anything that would escape the base directory is rejected.
func (om *OutputManager) ResolveDownloadPath(jobID, fileName string) (string, error) {
	if jobID != filepath.Base(jobID) || fileName != filepath.Base(fileName) ||
		jobID == ".." || fileName == ".." {
		return "", fmt.Errorf("invalid download path %s/%s", jobID, fileName)
	}
	return filepath.Join(om.BaseOutputDir, jobID, fileName), nil
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(jobID, fileName string) string {
	cleanFileName := filepath.Base(fileName)
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, cleanFileName)
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	return FileType(fileName)
}

// FileType determines the file type based on extension
func FileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return "csv"
	case ".tsv":
		return "tsv"
	case ".json":
		return "json"
	case ".xlsx", ".xlsm":
		return "excel"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
