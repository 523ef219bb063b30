package model

type Project struct {
	ProjectID      string `firestore:"projectid"`
	OrganizationID string `firestore:"organizationid"`
	Name           string `firestore:"name,omitempty"`
}

// ProjectEmployee is an employee's membership in one project. Task assignees
// reference memberships, not employees.
type ProjectEmployee struct {
	ProjectEmployeeID string `firestore:"projectemployeeid"`
	ProjectID         string `firestore:"projectid"`
	EmployeeID        string `firestore:"employeeid"`
	Active            bool   `firestore:"active"`
}

type Employee struct {
	EmployeeID string `firestore:"employeeid"`
	FullName   string `firestore:"fullname,omitempty"`
	Email      string `firestore:"email,omitempty"`
}

// Organization carries the working-hours configuration. DailyMinuteCap bounds
// a single task estimate; zero means no cap.
type Organization struct {
	OrganizationID string `firestore:"organizationid"`
	Name           string `firestore:"name,omitempty"`
	DailyMinuteCap int    `firestore:"dailyminutecap"`
}

type FileRef struct {
	FileID      string `firestore:"fileid"`
	Name        string `firestore:"name,omitempty"`
	Path        string `firestore:"path,omitempty"`
	ContentType string `firestore:"contenttype,omitempty"`
	Size        int64  `firestore:"size,omitempty"`
}
