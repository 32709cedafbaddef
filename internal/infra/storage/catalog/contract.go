package catalog

import "github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
