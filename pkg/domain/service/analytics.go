package service

import (
	"sort"
	"time"
)

const salesWindowDays = 30

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DailySales struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

type MonthlyActivity struct {
	Month  string `json:"month"`
	Orders int    `json:"orders"`
	Users  int    `json:"users"`
}

// Dashboard is the data behind the admin home charts.
type Dashboard struct {
	TotalRevenue  float64           `json:"totalRevenue"`
	TotalOrders   int               `json:"totalOrders"`
	TotalUsers    int               `json:"totalUsers"`
	TotalProducts int               `json:"totalProducts"`
	OrderStatuses []StatusCount     `json:"orderStatuses"`
	DailySales    []DailySales      `json:"dailySales"`
	Monthly       []MonthlyActivity `json:"monthly"`
	DemoData      bool              `json:"demoData"`
}

func BuildDashboard(snapshot AdminSnapshot, now time.Time) Dashboard {
	d := Dashboard{
		TotalOrders:   len(snapshot.Orders),
		TotalUsers:    len(snapshot.Users),
		TotalProducts: len(snapshot.Products),
		DemoData:      snapshot.DemoData,
	}

	statuses := map[string]int{}
	salesByDay := map[string]float64{}
	ordersByMonth := map[time.Month]int{}
	for _, o := range snapshot.Orders {
		d.TotalRevenue += o.Total

		status := o.Status
		if status == "" {
			status = "Pending"
		}
		statuses[status]++

		salesByDay[o.Date.Format(time.DateOnly)] += o.Total
		if o.Date.Year() == now.Year() {
			ordersByMonth[o.Date.Month()]++
		}
	}

	for status, count := range statuses {
		d.OrderStatuses = append(d.OrderStatuses, StatusCount{Status: status, Count: count})
	}
	sort.Slice(d.OrderStatuses, func(i, j int) bool { return d.OrderStatuses[i].Status < d.OrderStatuses[j].Status })

	for i := salesWindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(time.DateOnly)
		d.DailySales = append(d.DailySales, DailySales{Date: day[5:], Sales: salesByDay[day]})
	}

	usersByMonth := map[time.Month]int{}
	for _, u := range snapshot.Users {
		if joined, ok := u.Joined(); ok && joined.Year() == now.Year() {
			usersByMonth[joined.Month()]++
		}
	}
	for m := time.January; m <= time.December; m++ {
		d.Monthly = append(d.Monthly, MonthlyActivity{
			Month:  m.String()[:3],
			Orders: ordersByMonth[m],
			Users:  usersByMonth[m],
		})
	}
	return d
}
