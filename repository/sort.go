package repository

import (
	"sort"

	"hrtracker/model"
)

func sortStates(states []model.State) {
	sort.Slice(states, func(i, j int) bool {
		if states[i].Order != states[j].Order {
			return states[i].Order < states[j].Order
		}
		return states[i].StateID < states[j].StateID
	})
}

func sortTasks(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].TaskID < tasks[j].TaskID
	})
}

func sortHistory(rows []model.TaskActionHistory) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].Seq < rows[j].Seq
	})
}

func sortSubscriptions(subs []model.TaskSubscriber) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].TaskSubscriberID < subs[j].TaskSubscriberID })
}
