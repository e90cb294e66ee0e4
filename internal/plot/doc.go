// Package plot renders the descriptive chart set as PNG files.
//
// Charts are drawn with go-chart and composed into figures on an RGBA
// canvas; figure titles and hue legends use the basicfont face. Every
// chart checks its columns before drawing, so a failed chart leaves no
// file behind.
//
// The patient set written by ExecutePlots:
//
//	patient_categories.png                     pie grid of age_group, gender, blood_type, medical_condition
//	age_distribution.png                       histogram with a KDE line
//	age_group_relationships.png                count plots of age_group by four fields
//	billing_category_vs_<hue>.png              count plots for age_group, gender, medical_condition, length_stay_group
//	hospital_vs_billing_category.png           count plot
package plot
