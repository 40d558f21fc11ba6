package entity

// Department is a hospital department. Nothing references it yet.
type Department struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (Department) TableName() string {
	return "departments"
}

// DefaultDepartments are created by the seeder on an empty database.
var DefaultDepartments = []string{"Cardiology", "Neurology", "Orthopedics", "General"}
