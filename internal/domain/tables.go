package domain

var Tables = []interface{}{
	// System
	&User{},
	&SysOprLog{},
	// Catalog
	&Category{},
	&Product{},
	// Shop
	&Cart{},
}
