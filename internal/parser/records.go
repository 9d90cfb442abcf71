package parser

import (
	"time"

	"github.com/tobyh/campussync/internal/domain"
)

// Record is one successfully parsed flat record, ready for the canonical
// mapper.
type Record interface {
	Kind() domain.Kind
	RecordID() string
}

// Alias tables, one ordered candidate list per logical field. The source
// system has renamed several fields over the years; old keys stay here so
// tenants on older webhook configurations keep working.
var (
	idKeys = aliases{"id", "ID", "Record_Id"}

	personFirstName = aliases{"First_Name", "FirstName", "First Name"}
	personLastName  = aliases{"Last_Name", "LastName", "Last Name"}
	personEmail     = aliases{"Email", "Email_Address"}
	personPhone     = aliases{"Phone", "Mobile", "Phone_Number"}
	personStatus    = aliases{"Status", "Contact_Status"}

	unitCode        = aliases{"Unit_Code", "UnitCode", "Code"}
	unitName        = aliases{"Unit_Name", "UnitName", "Name"}
	unitStatus      = aliases{"Status", "Unit_Status"}
	unitDescription = aliases{"Description", "Unit_Description"}

	classNameKeys  = aliases{"Class_Name", "Subject_Name", "Name"}
	classUnit      = aliases{"Unit", "Unit_Name_ID", "Subject"}
	classStartDate = aliases{"Start_Date", "Class_Start_Date"}
	classEndDate   = aliases{"End_Date", "Class_End_Date"}
	classStatus    = aliases{"Status", "Class_Status"}

	programCode   = aliases{"Program_Code", "Code"}
	programName   = aliases{"Program_Name", "Name"}
	programStatus = aliases{"Status", "Program_Status"}

	enrollmentPerson = aliases{"Contact", "Contact_Name", "Student"}
	enrollmentClass  = aliases{"Class", "Class_Name_ID", "Subject"}
	enrollmentStatus = aliases{"Status", "Enrollment_Status"}
	enrollmentDate   = aliases{"Enrollment_Date", "Enrolled_On"}

	gradePerson = aliases{"Contact", "Student"}
	gradeUnit   = aliases{"Unit", "Subject"}
	gradeScore  = aliases{"Score", "Grade", "Mark"}
	gradeDate   = aliases{"Graded_On", "Grade_Date"}

	paymentPerson   = aliases{"Contact", "Student"}
	paymentAmount   = aliases{"Amount", "Payment_Amount"}
	paymentCurrency = aliases{"Currency", "Currency_Code"}
	paymentDate     = aliases{"Payment_Date", "Paid_On"}
	paymentStatus   = aliases{"Status", "Payment_Status"}

	registrationPerson  = aliases{"Contact", "Student"}
	registrationProgram = aliases{"Program", "Program_Name_ID"}
	registrationStatus  = aliases{"Status", "Registration_Status"}
	registrationDate    = aliases{"Registration_Date", "Registered_On"}
)

// RecordID extracts the external record id without a full parse, for event
// log identity. Returns the empty string when no id key is present.
func RecordID(raw Raw) string {
	if raw == nil {
		return ""
	}
	id, _ := idKeys.text(raw)
	return id
}

// Person is the parsed person record.
type Person struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Status    string
}

func (p Person) Kind() domain.Kind { return domain.KindPerson }
func (p Person) RecordID() string  { return p.ID }

// Unit is the parsed unit record.
type Unit struct {
	ID          string
	Code        string
	Name        string
	Status      string
	Description string
}

func (u Unit) Kind() domain.Kind { return domain.KindUnit }
func (u Unit) RecordID() string  { return u.ID }

// Class is the parsed class record.
type Class struct {
	ID        string
	Name      string
	Unit      domain.Reference
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

func (c Class) Kind() domain.Kind { return domain.KindClass }
func (c Class) RecordID() string  { return c.ID }

// Program is the parsed program record.
type Program struct {
	ID     string
	Code   string
	Name   string
	Status string
}

func (p Program) Kind() domain.Kind { return domain.KindProgram }
func (p Program) RecordID() string  { return p.ID }

// Enrollment is the parsed enrollment record.
type Enrollment struct {
	ID         string
	Person     domain.Reference
	Class      domain.Reference
	Status     string
	EnrolledAt time.Time
}

func (e Enrollment) Kind() domain.Kind { return domain.KindEnrollment }
func (e Enrollment) RecordID() string  { return e.ID }

// Grade is the parsed grade record.
type Grade struct {
	ID       string
	Person   domain.Reference
	Unit     domain.Reference
	Score    float64
	GradedAt time.Time
}

func (g Grade) Kind() domain.Kind { return domain.KindGrade }
func (g Grade) RecordID() string  { return g.ID }

// Payment is the parsed payment record.
type Payment struct {
	ID       string
	Person   domain.Reference
	Amount   float64
	Currency string
	PaidAt   time.Time
	Status   string
}

func (p Payment) Kind() domain.Kind { return domain.KindPayment }
func (p Payment) RecordID() string  { return p.ID }

// Registration is the parsed registration record.
type Registration struct {
	ID           string
	Person       domain.Reference
	Program      domain.Reference
	Status       string
	RegisteredAt time.Time
}

func (r Registration) Kind() domain.Kind { return domain.KindRegistration }
func (r Registration) RecordID() string  { return r.ID }

// Parse converts one raw record into its parsed form for the given module.
// A rejection describes why the record cannot be parsed; it never aborts
// sibling records in the same notification.
func Parse(kind domain.Kind, raw Raw) (Record, *Rejection) {
	if raw == nil {
		return nil, &Rejection{Code: "not_an_object"}
	}
	switch kind {
	case domain.KindPerson:
		return parsePerson(raw)
	case domain.KindUnit:
		return parseUnit(raw)
	case domain.KindClass:
		return parseClass(raw)
	case domain.KindProgram:
		return parseProgram(raw)
	case domain.KindEnrollment:
		return parseEnrollment(raw)
	case domain.KindGrade:
		return parseGrade(raw)
	case domain.KindPayment:
		return parsePayment(raw)
	case domain.KindRegistration:
		return parseRegistration(raw)
	default:
		return nil, &Rejection{Code: "unknown_module", Field: string(kind)}
	}
}

func parsePerson(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	first, ok := personFirstName.text(raw)
	if !ok {
		return nil, missingField("first_name")
	}
	last, ok := personLastName.text(raw)
	if !ok {
		return nil, missingField("last_name")
	}
	email, _ := personEmail.text(raw)
	phone, _ := personPhone.text(raw)
	status, _ := personStatus.text(raw)
	return Person{ID: id, FirstName: first, LastName: last, Email: email, Phone: phone, Status: status}, nil
}

func parseUnit(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	code, ok := unitCode.text(raw)
	if !ok {
		return nil, missingField("code")
	}
	name, ok := unitName.text(raw)
	if !ok {
		return nil, missingField("name")
	}
	status, _ := unitStatus.text(raw)
	description, _ := unitDescription.text(raw)
	return Unit{ID: id, Code: code, Name: name, Status: status, Description: description}, nil
}

func parseClass(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	name, ok := classNameKeys.text(raw)
	if !ok {
		return nil, missingField("name")
	}
	unit, _ := classUnit.reference(raw)
	start, _, err := classStartDate.date(raw)
	if err != nil {
		return nil, invalidField("start_date")
	}
	end, _, err := classEndDate.date(raw)
	if err != nil {
		return nil, invalidField("end_date")
	}
	status, _ := classStatus.text(raw)
	return Class{ID: id, Name: name, Unit: unit, StartDate: start, EndDate: end, Status: status}, nil
}

func parseProgram(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	name, ok := programName.text(raw)
	if !ok {
		return nil, missingField("name")
	}
	code, _ := programCode.text(raw)
	status, _ := programStatus.text(raw)
	return Program{ID: id, Code: code, Name: name, Status: status}, nil
}

func parseEnrollment(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	person, ok := enrollmentPerson.reference(raw)
	if !ok {
		return nil, missingField("person")
	}
	class, ok := enrollmentClass.reference(raw)
	if !ok {
		return nil, missingField("class")
	}
	status, _ := enrollmentStatus.text(raw)
	enrolled, _, err := enrollmentDate.date(raw)
	if err != nil {
		return nil, invalidField("enrollment_date")
	}
	return Enrollment{ID: id, Person: person, Class: class, Status: status, EnrolledAt: enrolled}, nil
}

func parseGrade(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	person, ok := gradePerson.reference(raw)
	if !ok {
		return nil, missingField("person")
	}
	unit, ok := gradeUnit.reference(raw)
	if !ok {
		return nil, missingField("unit")
	}
	score, present, err := gradeScore.number(raw)
	if !present {
		return nil, missingField("score")
	}
	if err != nil {
		return nil, invalidField("score")
	}
	graded, _, err := gradeDate.date(raw)
	if err != nil {
		return nil, invalidField("graded_on")
	}
	return Grade{ID: id, Person: person, Unit: unit, Score: score, GradedAt: graded}, nil
}

func parsePayment(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	person, ok := paymentPerson.reference(raw)
	if !ok {
		return nil, missingField("person")
	}
	amount, present, err := paymentAmount.number(raw)
	if !present {
		return nil, missingField("amount")
	}
	if err != nil {
		return nil, invalidField("amount")
	}
	currency, _ := paymentCurrency.text(raw)
	paid, _, err := paymentDate.date(raw)
	if err != nil {
		return nil, invalidField("payment_date")
	}
	status, _ := paymentStatus.text(raw)
	return Payment{ID: id, Person: person, Amount: amount, Currency: currency, PaidAt: paid, Status: status}, nil
}

func parseRegistration(raw Raw) (Record, *Rejection) {
	id, ok := idKeys.text(raw)
	if !ok {
		return nil, missingField("id")
	}
	person, ok := registrationPerson.reference(raw)
	if !ok {
		return nil, missingField("person")
	}
	program, ok := registrationProgram.reference(raw)
	if !ok {
		return nil, missingField("program")
	}
	status, _ := registrationStatus.text(raw)
	registered, _, err := registrationDate.date(raw)
	if err != nil {
		return nil, invalidField("registration_date")
	}
	return Registration{ID: id, Person: person, Program: program, Status: status, RegisteredAt: registered}, nil
}
