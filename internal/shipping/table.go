package shipping

// Country is the only destination the rate table covers.
const Country = "Pakistan"

// Rate is the flat fee charged for one postal code.
type Rate struct {
	PostalCode string
	Fee        int64
}

// City groups the postal codes served in one city.
type City struct {
	Name  string
	Rates []Rate
}

// DefaultTable is the flat-fee schedule, in table order.
var DefaultTable = []City{
	{Name: "Karachi", Rates: []Rate{{"74400", 100}, {"74401", 120}, {"74402", 140}, {"74403", 150}}},
	{Name: "Lahore", Rates: []Rate{{"54000", 200}, {"54010", 220}, {"54020", 250}, {"54030", 300}}},
	{Name: "Islamabad", Rates: []Rate{{"44000", 180}, {"44010", 200}, {"44020", 220}, {"44030", 250}}},
	{Name: "Faisalabad", Rates: []Rate{{"38000", 150}, {"38010", 170}, {"38020", 190}, {"38030", 210}}},
	{Name: "Quetta", Rates: []Rate{{"87300", 300}, {"87310", 320}, {"87320", 350}, {"87330", 400}}},
	{Name: "Peshawar", Rates: []Rate{{"25000", 250}, {"25010", 270}, {"25020", 290}, {"25030", 310}}},
	{Name: "Multan", Rates: []Rate{{"60000", 220}, {"60010", 240}, {"60020", 260}, {"60030", 280}}},
	{Name: "Hyderabad", Rates: []Rate{{"71000", 180}, {"71010", 200}, {"71020", 220}, {"71030", 240}}},
}
