package models

// Collections groups the entity slices a view container holds.
type Collections struct {
	Courses   []Course         `json:"courses"`
	Reports   []Report         `json:"reports"`
	Ratings   []Rating         `json:"ratings"`
	Classes   []ScheduledClass `json:"classes"`
	Lectures  []Lecture        `json:"lectures"`
	Lecturers []UserProfile    `json:"lecturers"`
}

// Clone returns a copy whose slices do not alias c. Nil slices become empty.
func (c Collections) Clone() Collections {
	return Collections{
		Courses:   append(make([]Course, 0, len(c.Courses)), c.Courses...),
		Reports:   append(make([]Report, 0, len(c.Reports)), c.Reports...),
		Ratings:   append(make([]Rating, 0, len(c.Ratings)), c.Ratings...),
		Classes:   append(make([]ScheduledClass, 0, len(c.Classes)), c.Classes...),
		Lectures:  append(make([]Lecture, 0, len(c.Lectures)), c.Lectures...),
		Lecturers: append(make([]UserProfile, 0, len(c.Lecturers)), c.Lecturers...),
	}
}

// Empty reports whether every collection is empty.
func (c Collections) Empty() bool {
	return len(c.Courses) == 0 && len(c.Reports) == 0 && len(c.Ratings) == 0 &&
		len(c.Classes) == 0 && len(c.Lectures) == 0 && len(c.Lecturers) == 0
}
