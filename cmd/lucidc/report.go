package main

import "github.com/lucidlang/lucidc/internal/report"

func asReport(err error) (*report.Report, bool) {
	return report.As(err)
}
