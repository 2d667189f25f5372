package main

import (
	"time"

	"github.com/google/uuid"

	"dbcatalog/internal/catalog"
	"dbcatalog/internal/crawl"
	"dbcatalog/internal/lint"
)

// The view types below are the JSON shape of a crawled catalog.

type catalogView struct {
	Name     string       `json:"name"`
	CrawlID  uuid.UUID    `json:"crawl_id"`
	Dialect  string       `json:"dialect"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Schemas  []schemaView `json:"schemas"`
}

type schemaView struct {
	Name     string        `json:"name"`
	FullName string        `json:"full_name"`
	Tables   []tableView   `json:"tables"`
	Routines []routineView `json:"routines,omitempty"`
}

type tableView struct {
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Type        string           `json:"type,omitempty"`
	Remarks     string           `json:"remarks,omitempty"`
	Definition  string           `json:"definition,omitempty"`
	Columns     []columnView     `json:"columns"`
	PrimaryKey  *indexView       `json:"primary_key,omitempty"`
	Indexes     []indexView      `json:"indexes,omitempty"`
	ForeignKeys []foreignKeyView `json:"foreign_keys,omitempty"`
	Constraints []constraintView `json:"constraints,omitempty"`
	Triggers    []triggerView    `json:"triggers,omitempty"`
}

type columnView struct {
	Name            string `json:"name"`
	Ordinal         int    `json:"ordinal"`
	Type            string `json:"type"`
	Size            int    `json:"size,omitempty"`
	Nullable        bool   `json:"nullable"`
	Default         string `json:"default,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
	AutoIncremented bool   `json:"auto_incremented,omitempty"`
	PartOfPK        bool   `json:"part_of_pk,omitempty"`
	PartOfFK        bool   `json:"part_of_fk,omitempty"`
	References      string `json:"references,omitempty"`
}

type indexView struct {
	Name    string   `json:"name"`
	Unique  bool     `json:"unique"`
	Columns []string `json:"columns"`
}

type foreignKeyView struct {
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	References string   `json:"references"`
	RefColumns []string `json:"ref_columns"`
	OnUpdate   string   `json:"on_update,omitempty"`
	OnDelete   string   `json:"on_delete,omitempty"`
}

type constraintView struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Definition string `json:"definition,omitempty"`
}

type triggerView struct {
	Name      string   `json:"name"`
	Events    []string `json:"events"`
	Timing    string   `json:"timing,omitempty"`
	Statement string   `json:"statement,omitempty"`
}

type routineView struct {
	Name       string          `json:"name"`
	Specific   string          `json:"specific_name,omitempty"`
	Kind       string          `json:"kind"`
	ReturnType string          `json:"return_type,omitempty"`
	Parameters []parameterView `json:"parameters,omitempty"`
}

type parameterView struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	Type string `json:"type"`
}

type crawlView struct {
	Catalog catalogView   `json:"catalog"`
	Report  *crawl.Report `json:"report"`
}

func newCatalogView(cat *catalog.Catalog) catalogView {
	v := catalogView{
		Name:     cat.Name,
		CrawlID:  cat.Info.ID,
		Dialect:  cat.Info.Dialect,
		Started:  cat.Info.Started,
		Finished: cat.Info.Finished,
		Schemas:  []schemaView{},
	}
	for _, s := range cat.Schemas() {
		sv := schemaView{Name: s.Name(), FullName: s.FullName(), Tables: []tableView{}}
		for _, t := range cat.Tables(s) {
			sv.Tables = append(sv.Tables, newTableView(t))
		}
		for _, r := range cat.Routines(s) {
			sv.Routines = append(sv.Routines, newRoutineView(r))
		}
		v.Schemas = append(v.Schemas, sv)
	}
	return v
}

func newTableView(t *catalog.Table) tableView {
	tv := tableView{
		Name:    t.Name(),
		Kind:    t.Kind.String(),
		Type:    t.TableType,
		Remarks: t.Remarks,
		Columns: []columnView{},
	}
	if t.View != nil {
		tv.Definition = t.View.Definition
	}
	for _, c := range t.Columns() {
		cv := columnView{
			Name:            c.Name(),
			Ordinal:         c.Ordinal,
			Type:            c.TypeName(),
			Size:            c.Size,
			Nullable:        c.Nullable,
			Default:         c.Default,
			Remarks:         c.Remarks,
			AutoIncremented: c.AutoIncremented,
			PartOfPK:        c.PartOfPrimaryKey,
			PartOfFK:        c.PartOfForeignKey,
		}
		if c.Referenced != nil {
			cv.References = c.Referenced.FullName()
		}
		tv.Columns = append(tv.Columns, cv)
	}
	if t.PrimaryKey != nil {
		pk := newIndexView(t.PrimaryKey)
		tv.PrimaryKey = &pk
	}
	for _, i := range t.Indexes() {
		tv.Indexes = append(tv.Indexes, newIndexView(i))
	}
	for _, fk := range t.ImportedForeignKeys() {
		fv := foreignKeyView{Name: fk.Name(), OnUpdate: fk.UpdateRule, OnDelete: fk.DeleteRule}
		if to := fk.ReferencedTable(); to != nil {
			fv.References = to.FullName()
		}
		for _, ref := range fk.References() {
			fv.Columns = append(fv.Columns, ref.ForeignKeyColumn.Name())
			fv.RefColumns = append(fv.RefColumns, ref.PrimaryKeyColumn.Name())
		}
		tv.ForeignKeys = append(tv.ForeignKeys, fv)
	}
	for _, c := range t.Constraints() {
		tv.Constraints = append(tv.Constraints, constraintView{Name: c.Name(), Type: string(c.Type), Definition: c.Definition})
	}
	for _, tr := range t.Triggers() {
		tv.Triggers = append(tv.Triggers, triggerView{
			Name:      tr.Name(),
			Events:    tr.EventManipulation,
			Timing:    tr.ActionTiming,
			Statement: tr.ActionStatement,
		})
	}
	return tv
}

func newIndexView(i *catalog.Index) indexView {
	return indexView{Name: i.Name(), Unique: i.Unique, Columns: i.ColumnNames()}
}

func newRoutineView(r *catalog.Routine) routineView {
	rv := routineView{Name: r.Name(), Specific: r.SpecificName(), Kind: r.Kind.String()}
	if r.Function != nil {
		rv.ReturnType = r.Function.ReturnType
	}
	for _, p := range r.Parameters() {
		pv := parameterView{Name: p.Name(), Mode: string(p.Mode)}
		if p.Type != nil {
			pv.Type = p.Type.Name
		}
		rv.Parameters = append(rv.Parameters, pv)
	}
	return rv
}

type lintResultView struct {
	*lint.Result
	Failures []string `json:"failures,omitempty"`
}

func newLintResultView(res *lint.Result) lintResultView {
	v := lintResultView{Result: res}
	for _, f := range res.Failures {
		v.Failures = append(v.Failures, f.Error())
	}
	return v
}
