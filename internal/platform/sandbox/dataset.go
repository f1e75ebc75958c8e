// Package sandbox loads the demo hospital dataset used for local
// development and manual testing. Seeding is idempotent: rows are matched
// on their natural keys and existing rows are left untouched.
package sandbox

import (
	"time"

	"github.com/chaman/hospital/internal/platform/auth"
)

// UserSeed is a login account.
type UserSeed struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// DoctorSeed is a doctor profile keyed by email.
type DoctorSeed struct {
	Name            string
	Email           string
	Phone           string
	Specialization  string
	Qualification   string
	Experience      int
	ConsultationFee float64
	Availability    string
}

// PatientSeed is a patient profile keyed by email. UserEmail links the
// patient to a login account when set.
type PatientSeed struct {
	Name             string
	Email            string
	Phone            string
	Address          string
	DateOfBirth      time.Time
	Gender           string
	BloodGroup       string
	EmergencyContact string
	UserEmail        string
}

// AppointmentSeed references its patient and doctor by email. An
// appointment is considered present when one already exists for the same
// patient, doctor, date and time.
type AppointmentSeed struct {
	Date         time.Time
	Time         string
	Status       string
	Reason       string
	Notes        string
	PatientEmail string
	DoctorEmail  string
	UserEmail    string
}

// RecordSeed is a medical record matched on patient, diagnosis and date.
type RecordSeed struct {
	Diagnosis    string
	Treatment    string
	Prescription string
	Notes        string
	RecordDate   time.Time
	PatientEmail string
	AuthorEmail  string
}

// DepartmentSeed is keyed by name.
type DepartmentSeed struct {
	Name        string
	Description string
	Head        string
}

// StaffSeed is keyed by email.
type StaffSeed struct {
	Name       string
	Email      string
	Phone      string
	Position   string
	Department string
	Salary     float64
}

// Dataset is the full set of rows written by a seeding run.
type Dataset struct {
	Users        []UserSeed
	Doctors      []DoctorSeed
	Patients     []PatientSeed
	Appointments []AppointmentSeed
	Records      []RecordSeed
	Departments  []DepartmentSeed
	Staff        []StaffSeed
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// DemoDataset returns the standard demo hospital: an admin and a regular
// account, five doctors, three patients (the first linked to the regular
// account) and a handful of appointments, records, departments and staff.
func DemoDataset() Dataset {
	return Dataset{
		Users: []UserSeed{
			{Name: "Hospital Admin", Email: "admin@chaman.com", Password: "admin123", Role: auth.RoleAdmin},
			{Name: "John Patient", Email: "user@chaman.com", Password: "user123", Role: auth.RoleUser},
		},
		Doctors: []DoctorSeed{
			{
				Name: "Dr. Rajesh Sharma", Email: "dr.sharma@chaman.com", Phone: "+91-9876543210",
				Specialization: "Cardiology", Qualification: "MBBS, MD (Cardiology)",
				Experience: 15, ConsultationFee: 800, Availability: "Mon-Fri: 9AM-5PM, Sat: 9AM-1PM",
			},
			{
				Name: "Dr. Priya Patel", Email: "dr.patel@chaman.com", Phone: "+91-9876543211",
				Specialization: "Pediatrics", Qualification: "MBBS, MD (Pediatrics)",
				Experience: 12, ConsultationFee: 600, Availability: "Mon-Sat: 10AM-6PM",
			},
			{
				Name: "Dr. Amarjeet Singh", Email: "dr.singh@chaman.com", Phone: "+91-9876543212",
				Specialization: "Orthopedics", Qualification: "MBBS, MS (Orthopedics)",
				Experience: 18, ConsultationFee: 1000, Availability: "Mon-Fri: 8AM-4PM",
			},
			{
				Name: "Dr. Simran Kaur", Email: "dr.kaur@chaman.com", Phone: "+91-9876543213",
				Specialization: "Gynecology", Qualification: "MBBS, MD (Gynecology)",
				Experience: 10, ConsultationFee: 700, Availability: "Mon-Sat: 9AM-5PM",
			},
			{
				Name: "Dr. Vikram Kumar", Email: "dr.kumar@chaman.com", Phone: "+91-9876543214",
				Specialization: "General Medicine", Qualification: "MBBS, MD (Internal Medicine)",
				Experience: 8, ConsultationFee: 500, Availability: "Mon-Sun: 24/7 Emergency",
			},
		},
		Patients: []PatientSeed{
			{
				Name: "Ravi Kumar", Email: "patient1@example.com", Phone: "+91-9876543220",
				Address:     "House No. 123, Sector 14, Bahadurgarh, Patiala, Punjab",
				DateOfBirth: day(1985, time.June, 15), Gender: "Male", BloodGroup: "B+",
				EmergencyContact: "Sunita Kumar - +91-9876543221", UserEmail: "user@chaman.com",
			},
			{
				Name: "Meera Sharma", Email: "patient2@example.com", Phone: "+91-9876543222",
				Address:     "House No. 456, Model Town, Bahadurgarh, Patiala, Punjab",
				DateOfBirth: day(1990, time.March, 22), Gender: "Female", BloodGroup: "A+",
				EmergencyContact: "Raj Sharma - +91-9876543223",
			},
			{
				Name: "Harpreet Singh", Email: "patient3@example.com", Phone: "+91-9876543224",
				Address:     "House No. 789, Civil Lines, Bahadurgarh, Patiala, Punjab",
				DateOfBirth: day(1978, time.November, 8), Gender: "Male", BloodGroup: "O+",
				EmergencyContact: "Jasbir Singh - +91-9876543225",
			},
		},
		Appointments: []AppointmentSeed{
			{
				Date: day(2024, time.January, 20), Time: "10:00 AM", Status: "SCHEDULED",
				Reason: "Regular checkup", Notes: "Patient complains of chest pain",
				PatientEmail: "patient1@example.com", DoctorEmail: "dr.sharma@chaman.com",
				UserEmail: "user@chaman.com",
			},
			{
				Date: day(2024, time.January, 21), Time: "2:00 PM", Status: "COMPLETED",
				Reason: "Child vaccination", Notes: "Routine vaccination completed",
				PatientEmail: "patient2@example.com", DoctorEmail: "dr.patel@chaman.com",
			},
			{
				Date: day(2024, time.January, 22), Time: "11:30 AM", Status: "SCHEDULED",
				Reason: "Knee pain consultation", Notes: "Patient has been experiencing knee pain for 2 weeks",
				PatientEmail: "patient3@example.com", DoctorEmail: "dr.singh@chaman.com",
			},
		},
		Records: []RecordSeed{
			{
				Diagnosis: "Hypertension", Treatment: "Prescribed ACE inhibitors and lifestyle changes",
				Prescription: "Lisinopril 10mg once daily, Low sodium diet",
				Notes:        "Patient advised to monitor blood pressure daily",
				RecordDate:   day(2024, time.January, 15),
				PatientEmail: "patient1@example.com", AuthorEmail: "admin@chaman.com",
			},
			{
				Diagnosis: "Common Cold", Treatment: "Rest and symptomatic treatment",
				Prescription: "Paracetamol 500mg TID, Plenty of fluids",
				Notes:        "Patient should recover in 5-7 days",
				RecordDate:   day(2024, time.January, 16),
				PatientEmail: "patient2@example.com", AuthorEmail: "admin@chaman.com",
			},
		},
		Departments: []DepartmentSeed{
			{Name: "Cardiology", Description: "Heart and cardiovascular system care", Head: "Dr. Rajesh Sharma"},
			{Name: "Pediatrics", Description: "Child healthcare and development", Head: "Dr. Priya Patel"},
			{Name: "Orthopedics", Description: "Bone, joint, and muscle care", Head: "Dr. Amarjeet Singh"},
			{Name: "Gynecology", Description: "Women's health and reproductive care", Head: "Dr. Simran Kaur"},
			{Name: "General Medicine", Description: "Primary healthcare and general medical conditions", Head: "Dr. Vikram Kumar"},
		},
		Staff: []StaffSeed{
			{
				Name: "Sister Manjeet Kaur", Email: "nurse1@chaman.com", Phone: "+91-9876543230",
				Position: "Head Nurse", Department: "General Medicine", Salary: 35000,
			},
			{
				Name: "Pooja Sharma", Email: "receptionist@chaman.com", Phone: "+91-9876543231",
				Position: "Receptionist", Department: "Administration", Salary: 25000,
			},
			{
				Name: "Ramesh Gupta", Email: "pharmacist@chaman.com", Phone: "+91-9876543232",
				Position: "Pharmacist", Department: "Pharmacy", Salary: 40000,
			},
		},
	}
}
